package auth

import (
	"context"
	"net/http"

	dom "taskflow/internal/domain"
	"taskflow/internal/home"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the session id.
const SessionCookieName = "session_id"

const (
	contextKeySessionID = "session_id"
	contextKeyUserID    = "user_id"
)

// Sessions is the part of Store the middleware needs.
type Sessions interface {
	Create(ctx context.Context, userID int64) (string, error)
	GetUserID(ctx context.Context, id string) (int64, bool)
}

// IdentityFromContext returns the identity set by EnsureSession.
func IdentityFromContext(c *gin.Context) home.Identity {
	return home.Identity{
		SessionID: c.GetString(contextKeySessionID),
		UserID:    c.GetInt64(contextKeyUserID),
	}
}

// SetIdentity stores id on the request context.
func SetIdentity(c *gin.Context, id home.Identity) {
	c.Set(contextKeySessionID, id.SessionID)
	c.Set(contextKeyUserID, id.UserID)
}

// EnsureSession resolves the session cookie. A missing or expired session is
// replaced by a new anonymous one, so every request has an identity.
func EnsureSession(sessions Sessions, maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, err := c.Cookie(SessionCookieName); err == nil && sessionID != "" {
			if userID, ok := sessions.GetUserID(c.Request.Context(), sessionID); ok {
				SetIdentity(c, home.Identity{SessionID: sessionID, UserID: userID})
				c.Next()
				return
			}
		}
		sessionID, err := sessions.Create(c.Request.Context(), dom.AnonymousUserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
			return
		}
		SetSessionCookie(c, sessionID, maxAge)
		SetIdentity(c, home.Identity{SessionID: sessionID, UserID: dom.AnonymousUserID})
		c.Next()
	}
}

// SetSessionCookie writes an httpOnly session cookie; a negative maxAge clears it.
func SetSessionCookie(c *gin.Context, sessionID string, maxAge int) {
	c.SetCookie(SessionCookieName, sessionID, maxAge, "/", "", false, true)
}
