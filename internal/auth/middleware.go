package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_id"

const contextKeyUserID = "user_id"

// AccountChecker reports whether an account still exists. Sessions whose
// account was deleted must resolve to no identity.
type AccountChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// UserIDFromContext returns the current user ID set by RequireSession. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireSession returns a middleware that resolves the session cookie to an
// account and sets the user ID in context. Requests without a valid session
// are aborted with 401 before the protected handler runs.
func RequireSession(sessions *Store, accounts AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		userID, ok := sessions.GetUserID(c.Request.Context(), token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		exists, err := accounts.Exists(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !exists {
			// Orphan session for a deleted account.
			_ = sessions.Delete(c.Request.Context(), token)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}
