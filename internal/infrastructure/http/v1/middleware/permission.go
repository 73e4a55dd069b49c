package middleware

import (
	"github.com/gin-gonic/gin"

	"trackiq/internal/core/apperror"
	appctx "trackiq/internal/core/context"
	"trackiq/internal/core/security"
)

// RequirePermission checks that the caller may perform action in module.
// Admins pass unconditionally; everyone else needs the grant carried by the token.
func RequirePermission(module security.Module, action security.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Authorize(c, module, action) {
			c.Next()
		}
	}
}

// Authorize is RequirePermission for checks that depend on the request body.
// On false the request has already been aborted with 401 or 403.
func Authorize(c *gin.Context, module security.Module, action security.Action) bool {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		abortUnauthorized(c)
		return false
	}
	if !allowed(user, module, action) {
		_ = c.Error(
			apperror.NewForbidden(MsgRoleNotAllowed).
				WithDetail("required_permission", security.PermissionString(module, action)),
		)
		c.Abort()
		return false
	}
	return true
}

// RequireAnyPermission passes when the caller holds at least one of the
// "module:action" permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c)
			return
		}

		for _, p := range permissions {
			module, action, ok := security.ParsePermission(p)
			if ok && allowed(user, module, action) {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden(MsgRoleNotAllowed).
				WithDetail("required_permissions", permissions),
		)
		c.Abort()
	}
}

func allowed(user *appctx.UserContext, module security.Module, action security.Action) bool {
	if user.IsAdmin {
		return true
	}
	return security.HasPermission(security.Role(user.Role), security.GrantsFromStrings(user.Permissions), module, action)
}
