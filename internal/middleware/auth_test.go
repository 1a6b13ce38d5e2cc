package middleware

import (
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/auth"
	"lunch/backend/internal/entity"
)

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := auth.New("middleware-test-key-0001")
	require.NoError(t, err)

	app := web.NewApp(log.New(os.Stdout, "TEST : ", 0))
	app.Get("/admin", func(c *web.Context) error {
		claims, err := auth.GetClaims(c.Ctx)
		if err != nil {
			return err
		}
		return c.Respond(map[string]interface{}{"data": claims.Username, "status": true}, http.StatusOK)
	}, Authenticate(a, auth.RoleAdmin))

	admin, _, err := a.GenerateTokens(entity.User{ID: 1, Username: "admin"}, auth.RoleAdmin)
	require.NoError(t, err)
	operator, _, err := a.GenerateTokens(entity.User{ID: 2, Username: "caja"}, auth.RoleOperator)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token " + admin, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + operator, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			app.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"admin"`)
			} else {
				assert.Contains(t, w.Body.String(), `"status":false`)
			}
		})
	}
}

func TestCorsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CorsMiddleware([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
