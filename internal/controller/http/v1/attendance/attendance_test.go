package attendance

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/service/registration"
)

type fakeRegistration struct {
	registered []string
	limit      int
}

func (f *fakeRegistration) Register(_ context.Context, code string) (registration.Result, error) {
	switch code {
	case "":
		return registration.Result{}, registration.ErrCodeRequired
	case "404":
		return registration.Result{}, registration.ErrPersonNotFound
	case "N1":
		return registration.Result{}, errs.New(errs.Ineligible, "Luis Gomez is not eligible for lunch")
	}
	for _, c := range f.registered {
		if c == code {
			return registration.Result{}, registration.ErrAlreadyRegisteredToday
		}
	}
	f.registered = append(f.registered, code)
	return registration.Result{RecordID: len(f.registered), PersonCode: code, PersonName: "Ana Ruiz"}, nil
}

func (f *fakeRegistration) Today(_ context.Context, limit int) ([]registration.Result, error) {
	f.limit = limit
	return []registration.Result{{RecordID: 1, PersonCode: "1001"}}, nil
}

func (f *fakeRegistration) Ticket(_ context.Context, id int) ([]byte, error) {
	if id != 1 {
		return nil, errs.New(errs.NotFound, "record not found")
	}
	return []byte("%PDF-1.3"), nil
}

func (f *fakeRegistration) Delete(_ context.Context, id int) error {
	if id != 1 {
		return errs.New(errs.NotFound, "record not found")
	}
	return nil
}

func newApp(reg Registration) *web.App {
	gin.SetMode(gin.TestMode)

	c := NewController(reg)
	app := web.NewApp(log.New(io.Discard, "", 0))
	app.Post("/attendance/register", c.Register)
	app.Get("/attendance/today", c.GetToday)
	app.Get("/attendance/:id/ticket", c.GetTicket)
	app.Delete("/attendance/:id", c.Delete)
	return app
}

func serve(app *web.App, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	app := newApp(&fakeRegistration{})

	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"success", `{"id_persona":"1001"}`, http.StatusCreated, ""},
		{"twice the same day", `{"id_persona":"1001"}`, http.StatusConflict, "lunch already taken today"},
		{"unknown code", `{"id_persona":"404"}`, http.StatusNotFound, "person code not found"},
		{"not eligible", `{"id_persona":"N1"}`, http.StatusUnprocessableEntity, "Luis Gomez is not eligible for lunch"},
		{"empty code", `{"id_persona":""}`, http.StatusBadRequest, "a person code is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(app, http.MethodPost, "/attendance/register", tt.body)
			require.Equal(t, tt.status, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.error == "" {
				assert.Equal(t, true, body["status"])
				assert.Equal(t, "1001", body["data"].(map[string]interface{})["id_persona"])
				return
			}
			assert.Equal(t, tt.error, body["error"])
		})
	}
}

func TestToday(t *testing.T) {
	reg := &fakeRegistration{}
	app := newApp(reg)

	w := serve(app, http.MethodGet, "/attendance/today?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, reg.limit)

	w = serve(app, http.MethodGet, "/attendance/today", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, reg.limit)
}

func TestTicketAndDelete(t *testing.T) {
	app := newApp(&fakeRegistration{})

	w := serve(app, http.MethodGet, "/attendance/1/ticket", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = serve(app, http.MethodGet, "/attendance/2/ticket", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(app, http.MethodDelete, "/attendance/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(app, http.MethodDelete, "/attendance/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
