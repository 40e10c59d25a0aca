package handlers_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/http/flash"
	"github.com/geocoder89/punchclock/internal/http/middlewares"
	"github.com/geocoder89/punchclock/internal/http/web"
	"github.com/geocoder89/punchclock/internal/timeclock"
	"github.com/gin-gonic/gin"
)

type fakeDirectory struct {
	createFn func(ctx context.Context, req employee.CreateRequest) (employee.Employee, error)
	authFn   func(ctx context.Context, email, password string) (employee.Employee, error)
	deleteFn func(ctx context.Context, employeeID string) error
}

func (f *fakeDirectory) CreateEmployee(ctx context.Context, req employee.CreateRequest) (employee.Employee, error) {
	return f.createFn(ctx, req)
}

func (f *fakeDirectory) Authenticate(ctx context.Context, email, password string) (employee.Employee, error) {
	return f.authFn(ctx, email, password)
}

func (f *fakeDirectory) DeleteEmployee(ctx context.Context, employeeID string) error {
	return f.deleteFn(ctx, employeeID)
}

type fakeIssuer struct {
	issueFn func(employeeID, name string) (string, time.Time, error)
}

func (f *fakeIssuer) Issue(employeeID, name string) (string, time.Time, error) {
	return f.issueFn(employeeID, name)
}

type fakeTimeClock struct {
	clockInFn  func(ctx context.Context, employeeID string) (clock.Event, error)
	clockOutFn func(ctx context.Context, employeeID string) (clock.Event, error)
	eventsFn   func(ctx context.Context, employeeID string) ([]clock.Event, error)
	earningsFn func(ctx context.Context, employeeID string) (timeclock.Earnings, error)
}

func (f *fakeTimeClock) ClockIn(ctx context.Context, employeeID string) (clock.Event, error) {
	return f.clockInFn(ctx, employeeID)
}

func (f *fakeTimeClock) ClockOut(ctx context.Context, employeeID string) (clock.Event, error) {
	return f.clockOutFn(ctx, employeeID)
}

func (f *fakeTimeClock) Events(ctx context.Context, employeeID string) ([]clock.Event, error) {
	return f.eventsFn(ctx, employeeID)
}

func (f *fakeTimeClock) Earnings(ctx context.Context, employeeID string) (timeclock.Earnings, error) {
	return f.earningsFn(ctx, employeeID)
}

// newTestRouter returns an engine with the page templates loaded. A non-empty
// employeeID acts as a logged-in session.
func newTestRouter(t *testing.T, employeeID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	if employeeID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxEmployeeID, employeeID)
			c.Set(middlewares.CtxEmployeeName, "Alice")
			c.Next()
		})
	}
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// flashes decodes the notices a response queued for the next page.
func flashes(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name != flash.CookieName || c.Value == "" {
			continue
		}
		b, err := base64.RawURLEncoding.DecodeString(c.Value)
		if err != nil {
			t.Fatalf("decode flash cookie: %v", err)
		}
		var msgs []string
		if err := json.Unmarshal(b, &msgs); err != nil {
			t.Fatalf("unmarshal flash cookie: %v", err)
		}
		return msgs
	}
	return nil
}

func sessionCleared(w *httptest.ResponseRecorder) bool {
	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookieName && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location, notice string) {
	t.Helper()

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, http.StatusFound, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}

	got := flashes(t, w)
	if notice == "" {
		return
	}
	if len(got) != 1 || got[0] != notice {
		t.Fatalf("flash = %q, want %q", got, notice)
	}
}
