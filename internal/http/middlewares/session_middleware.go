package middlewares

import (
	"net/http"
	"time"

	"github.com/geocoder89/punchclock/internal/actorctx"
	"github.com/geocoder89/punchclock/internal/auth"
	"github.com/geocoder89/punchclock/internal/http/flash"
	"github.com/gin-gonic/gin"
)

const SessionCookieName = "session"

// Keep this small interface so tests can fake it easily.
type SessionVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type SessionMiddleware struct {
	sessions SessionVerifier
	secure   bool
}

func NewSessionMiddleware(sessions SessionVerifier, secureCookies bool) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, secure: secureCookies}
}

// LoadSession identifies the employee from the session cookie when there is
// a valid one. It never rejects a request.
func (m *SessionMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		claims, err := m.sessions.Verify(raw)
		if err != nil {
			ClearSessionCookie(c, m.secure)
			c.Next()
			return
		}

		c.Set(CtxEmployeeID, claims.EmployeeID)
		c.Set(CtxEmployeeName, claims.Name)
		c.Request = c.Request.WithContext(actorctx.WithEmployeeID(c.Request.Context(), claims.EmployeeID))

		c.Next()
	}
}

// RequireSessionJSON answers 401 {"error":"Unauthorized"} without a session.
func (m *SessionMiddleware) RequireSessionJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := EmployeeIDFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireSessionAPI is RequireSessionJSON with the API error envelope.
func (m *SessionMiddleware) RequireSessionAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := EmployeeIDFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or expired session",
				},
			})
			return
		}
		c.Next()
	}
}

// RequireSessionPage sends visitors without a session to the login page.
func (m *SessionMiddleware) RequireSessionPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := EmployeeIDFromContext(c); !ok {
			flash.Add(c, "You need to log in first.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Optional helpers so handlers don't need to know the magic keys.

func EmployeeIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxEmployeeID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func EmployeeNameFromContext(c *gin.Context) string {
	v, _ := c.Get(CtxEmployeeName)
	name, _ := v.(string)
	return name
}

func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		token,
		int(time.Until(expiresAt).Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
	c.Set(CtxEmployeeID, "")
	c.Set(CtxEmployeeName, "")
}
