package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"trackiq/internal/core/apperror"
	appctx "trackiq/internal/core/context"
)

// Messages returned to clients on failed access checks.
const (
	MsgNotAuthorized  = "Not authorized to access this route"
	MsgRoleNotAllowed = "User role not authorized to access this route"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// Auth middleware validates bearer tokens and populates user context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		user, err := validator.ValidateToken(token)
		if err != nil || user == nil {
			abortUnauthorized(c)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth validates token if present, but doesn't require it.
func OptionalAuth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := validator.ValidateToken(token); err == nil && user != nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireRole middleware checks if user has one of the roles. Admin always passes.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if appctx.GetUser(c.Request.Context()) == nil {
			abortUnauthorized(c)
			return
		}
		if !appctx.HasRole(c.Request.Context(), roles...) {
			_ = c.Error(apperror.NewForbidden(MsgRoleNotAllowed).WithDetail("required_roles", roles))
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setUser(c *gin.Context, user *appctx.UserContext) {
	c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
	c.Set("user_id", user.UserID)
	c.Set("permissions", user.Permissions)
}

func abortUnauthorized(c *gin.Context) {
	_ = c.Error(apperror.NewUnauthorized(MsgNotAuthorized))
	c.Abort()
}
