package web

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch/backend/internal/pkg/errs"
)

func newTestApp(mw ...Middleware) *App {
	gin.SetMode(gin.TestMode)
	return NewApp(log.New(io.Discard, "", 0), mw...)
}

func do(t *testing.T, app *App, method, target, body string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func TestRespondError(t *testing.T) {
	app := newTestApp()
	app.Get("/request", func(c *Context) error {
		return c.RespondError(NewRequestError(errors.New("bad input"), http.StatusBadRequest))
	})
	app.Get("/kind", func(c *Context) error {
		return c.RespondError(errors.Wrap(errs.New(errs.Conflict, "lunch already taken today"), "registering"))
	})
	app.Get("/fields", func(c *Context) error {
		return c.RespondError(errs.WithFields("import rejected", []string{"Row 2: bad", "Row 3: worse"}))
	})
	app.Get("/internal", func(c *Context) error {
		return c.RespondError(errors.New("connection refused"))
	})
	app.Get("/returned", func(c *Context) error {
		return errs.New(errs.NotFound, "person code not found")
	})

	status, body := do(t, app, http.MethodGet, "/request", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad input", body["error"])
	assert.Equal(t, false, body["status"])

	status, body = do(t, app, http.MethodGet, "/kind", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "registering: lunch already taken today", body["error"])

	status, body = do(t, app, http.MethodGet, "/fields", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []interface{}{"Row 2: bad", "Row 3: worse"}, body["errors"])

	status, body = do(t, app, http.MethodGet, "/internal", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), body["error"])

	status, body = do(t, app, http.MethodGet, "/returned", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "person code not found", body["error"])
}

func TestParamsAndQuery(t *testing.T) {
	app := newTestApp()
	app.Get("/item/:id", func(c *Context) error {
		id := c.GetParam(reflect.Int, "id").(int)
		if err := c.ValidParam(); err != nil {
			return c.RespondError(err)
		}

		limit, _ := c.GetQueryFunc(reflect.Int, "limit").(*int)
		if err := c.ValidQuery(); err != nil {
			return c.RespondError(err)
		}

		data := map[string]interface{}{"id": id}
		if limit != nil {
			data["limit"] = *limit
		}
		return c.Respond(map[string]interface{}{"data": data, "status": true}, http.StatusOK)
	})

	status, body := do(t, app, http.MethodGet, "/item/7?limit=3", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"id": float64(7), "limit": float64(3)}, body["data"])

	status, body = do(t, app, http.MethodGet, "/item/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "id: must be an integer", body["error"])

	status, body = do(t, app, http.MethodGet, "/item/1?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "limit: must be an integer", body["error"])
}

func TestBindFunc(t *testing.T) {
	type request struct {
		Name  string `json:"name"`
		Count *int   `json:"count"`
	}

	app := newTestApp()
	app.Post("/bind", func(c *Context) error {
		var r request
		if err := c.BindFunc(&r, "Name", "Count"); err != nil {
			return c.RespondError(err)
		}
		return c.Respond(map[string]interface{}{"data": r.Name, "status": true}, http.StatusCreated)
	})

	status, body := do(t, app, http.MethodPost, "/bind", `{"name":"Ana","count":2}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Ana", body["data"])

	status, body = do(t, app, http.MethodPost, "/bind", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "required fields are missing: Name, Count", body["error"])

	status, _ = do(t, app, http.MethodPost, "/bind", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMiddlewareOrder(t *testing.T) {
	var calls []string
	trace := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(c *Context) error {
				calls = append(calls, name)
				return next(c)
			}
		}
	}

	app := newTestApp(trace("app"))
	app.Get("/", func(c *Context) error {
		calls = append(calls, "handler")
		return c.Respond(nil, http.StatusNoContent)
	}, trace("route"))

	status, _ := do(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, []string{"app", "route", "handler"}, calls)
}
