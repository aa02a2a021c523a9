package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/pkg/auth"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/httputil"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate validates the Bearer access token and stores the caller's
// identity in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		claims, err := m.jwtSvc.ValidateAccessToken(parts[1])
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequirePermission gates a route on the caller's role having the
// permission in the central role table.
func (m *AuthMiddleware) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := model.Role(c.GetString(ContextRole))
		if !model.HasPermission(role, permission) {
			httputil.RespondWithError(c, apperrors.InvalidRole())
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated user's ID from the context.
func CallerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CallerRole returns the authenticated user's role from the context.
func CallerRole(c *gin.Context) model.Role {
	return model.Role(c.GetString(ContextRole))
}

func abortUnauthorized(c *gin.Context) {
	httputil.RespondWithError(c, apperrors.InvalidCredentials())
	c.Abort()
}
