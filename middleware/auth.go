package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"riverside/models"
	"riverside/utils"
)

const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "session"
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserNameKey stores the display name inside Gin context.
	ContextUserNameKey = "user_name"
)

// sessionToken extracts the raw token from the session cookie, falling
// back to an Authorization bearer header for non-browser clients.
func sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthRequired ensures the request carries a valid session. Unauthenticated
// requests are redirected to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := sessionToken(ctx)
		if token == "" {
			ctx.Redirect(http.StatusFound, "/login")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseSessionToken(token)
		if err != nil {
			ctx.Redirect(http.StatusFound, "/login")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUserNameKey, claims.Name)
		ctx.Next()
	}
}

// AdminRequired rejects any principal other than the site operator with 403.
// It must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(ContextUserIDKey)
		userID, _ := value.(uint)
		if !exists || userID != models.AdminUserID {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin access required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentUserID returns the authenticated user ID stored by AuthRequired.
func CurrentUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// IsAdmin reports whether the request principal is the site operator.
func IsAdmin(ctx *gin.Context) bool {
	id, ok := CurrentUserID(ctx)
	return ok && id == models.AdminUserID
}
