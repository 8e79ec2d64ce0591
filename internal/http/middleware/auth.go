package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mindmirror/mindmirror-backend/internal/http/response"
	"github.com/mindmirror/mindmirror-backend/internal/platform/apierr"
	"github.com/mindmirror/mindmirror-backend/internal/platform/ctxutil"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"github.com/mindmirror/mindmirror-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth rejects the request with 401 before any handler runs unless it
// carries a valid bearer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			abortUnauthorized(c, "missing or invalid token")
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
			abortUnauthorized(c, "missing or invalid token")
			return
		}
		if ctxutil.CallerID(ctx) == "" {
			abortUnauthorized(c, "missing or invalid token")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, apierr.Unauthorized(msg))
	c.Abort()
}

func extractTokenFromAll(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if qToken := strings.TrimSpace(c.Query("token")); qToken != "" {
		return qToken
	}
	return ""
}
