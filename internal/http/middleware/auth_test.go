package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mindmirror/mindmirror-backend/internal/http/response"
	"github.com/mindmirror/mindmirror-backend/internal/platform/ctxutil"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"github.com/mindmirror/mindmirror-backend/internal/services"
)

func newAuthRouter(t *testing.T) (*gin.Engine, services.AuthService, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := services.NewAuthService(logger.NewNop(), "mw-secret")
	am := NewAuthMiddleware(logger.NewNop(), authService)
	reached := false

	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/api/feelings", func(c *gin.Context) {
		reached = true
		c.String(http.StatusOK, ctxutil.CallerID(c.Request.Context()))
	})
	return r, authService, &reached
}

func TestRequireAuthAcceptsBearerAndQueryToken(t *testing.T) {
	r, authService, reached := newAuthRouter(t)
	token, err := authService.IssueToken("owner-42", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	for name, build := range map[string]func() *http.Request{
		"header": func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/feelings", nil)
			req.Header.Set("Authorization", "bearer "+token)
			return req
		},
		"query": func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/feelings?token="+token, nil)
		},
	} {
		*reached = false
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, build())
		if rec.Code != http.StatusOK || !*reached {
			t.Fatalf("%s: status=%d reached=%v", name, rec.Code, *reached)
		}
		if rec.Body.String() != "owner-42" {
			t.Fatalf("%s: caller got=%q", name, rec.Body.String())
		}
	}
}

func TestRequireAuthRejectsBeforeHandler(t *testing.T) {
	r, _, reached := newAuthRouter(t)
	other := services.NewAuthService(logger.NewNop(), "someone-else")
	forged, _ := other.IssueToken("owner-42", time.Hour)

	for name, header := range map[string]string{
		"missing": "",
		"basic":   "Basic dXNlcjpwYXNz",
		"forged":  "Bearer " + forged,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/feelings", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status got=%d want=%d", name, rec.Code, http.StatusUnauthorized)
		}
		if *reached {
			t.Fatalf("%s: handler ran without auth", name)
		}
		var env response.ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if env.Error.Code != "unauthorized" || env.Error.Message == "" {
			t.Fatalf("%s: envelope got=%+v", name, env.Error)
		}
	}
}
