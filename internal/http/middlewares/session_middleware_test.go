package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/punchclock/internal/actorctx"
	"github.com/geocoder89/punchclock/internal/auth"
	"github.com/geocoder89/punchclock/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func newSessionEngine(t *testing.T, require func(*middlewares.SessionMiddleware) gin.HandlerFunc) (*gin.Engine, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	mw := middlewares.NewSessionMiddleware(mgr, false)

	r := gin.New()
	r.Use(mw.LoadSession())
	r.GET("/whoami", require(mw), func(c *gin.Context) {
		id, _ := middlewares.EmployeeIDFromContext(c)
		actor, _ := actorctx.EmployeeIDFrom(c.Request.Context())
		c.String(http.StatusOK, id+"|"+middlewares.EmployeeNameFromContext(c)+"|"+actor)
	})
	return r, mgr
}

func requestWithSession(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: token})
	}
	return req
}

func TestLoadSessionValidCookie(t *testing.T) {
	r, mgr := newSessionEngine(t, (*middlewares.SessionMiddleware).RequireSessionJSON)

	token, _, err := mgr.Issue("E1a2b3c4d", "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, requestWithSession(token))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "E1a2b3c4d|Alice|E1a2b3c4d" {
		t.Fatalf("body = %q", got)
	}
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name         string
		require      func(*middlewares.SessionMiddleware) gin.HandlerFunc
		token        string
		wantStatus   int
		wantBody     string
		wantLocation string
	}{
		{
			name:       "json without cookie",
			require:    (*middlewares.SessionMiddleware).RequireSessionJSON,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:       "json with forged cookie",
			require:    (*middlewares.SessionMiddleware).RequireSessionJSON,
			token:      "not-a-token",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:       "api envelope",
			require:    (*middlewares.SessionMiddleware).RequireSessionAPI,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"code":"unauthorized"`,
		},
		{
			name:         "page redirects to login",
			require:      (*middlewares.SessionMiddleware).RequireSessionPage,
			wantStatus:   http.StatusFound,
			wantLocation: "/login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newSessionEngine(t, tt.require)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, requestWithSession(tt.token))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Fatalf("body = %s, want %s", w.Body.String(), tt.wantBody)
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Fatalf("Location = %q", w.Header().Get("Location"))
			}
		})
	}
}

func TestInvalidSessionCookieIsCleared(t *testing.T) {
	r, _ := newSessionEngine(t, (*middlewares.SessionMiddleware).RequireSessionJSON)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, requestWithSession("garbage"))

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected the bad session cookie to be cleared")
	}
}
