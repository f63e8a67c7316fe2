package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smartcram/smartcram-backend/internal/handlers"
	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/requestdata"
	"github.com/smartcram/smartcram-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		log:         log.With("middleware", "AuthMiddleware"),
		authService: authService,
	}
}

// RequireAuth resolves the bearer token to an active user and stores the
// identity in the request context for owner-scoped handlers downstream.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorEnvelope{
				Error: handlers.APIError{Message: "missing or invalid token", Code: "unauthorized"},
			})
			return
		}
		user, err := am.authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Token authentication failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorEnvelope{
				Error: handlers.APIError{Message: "invalid or expired token", Code: "unauthorized"},
			})
			return
		}
		rd := &requestdata.RequestData{
			UserID:      user.ID,
			TokenString: tokenString,
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
