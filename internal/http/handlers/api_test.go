package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/earnings"
	"github.com/geocoder89/punchclock/internal/http/handlers"
	"github.com/geocoder89/punchclock/internal/timeclock"
	"github.com/gin-gonic/gin"
)

type fakeProfiles struct {
	getFn func(ctx context.Context, employeeID string) (employee.Employee, error)
}

func (f *fakeProfiles) Get(ctx context.Context, employeeID string) (employee.Employee, error) {
	return f.getFn(ctx, employeeID)
}

func newAPIRouter(t *testing.T, tc *fakeTimeClock) *gin.Engine {
	return newAPIRouterWithProfiles(t, tc, &fakeProfiles{})
}

func newAPIRouterWithProfiles(t *testing.T, tc *fakeTimeClock, profiles *fakeProfiles) *gin.Engine {
	t.Helper()

	h := handlers.NewAPIHandler(tc, profiles, earnings.NewCalculator(22), time.UTC)

	r := newTestRouter(t, "E1a2b3c4d")
	r.GET("/api/me", h.Me)
	r.GET("/api/events", h.ListEvents)
	r.GET("/api/earnings", h.Earnings)
	r.POST("/api/earnings/preview", h.PreviewEarnings)
	return r
}

func TestListEventsETag(t *testing.T) {
	tc := &fakeTimeClock{eventsFn: func(ctx context.Context, employeeID string) ([]clock.Event, error) {
		return sampleEvents(), nil
	}}
	r := newAPIRouter(t, tc)

	w := get(r, "/api/events")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		EmployeeID string      `json:"employeeId"`
		Events     []clock.Row `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.EmployeeID != "E1a2b3c4d" || len(resp.Events) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Events[0].ClockOut != "2024-03-04 17:35:00" || resp.Events[1].ClockOut != "" {
		t.Fatalf("unexpected rows %+v", resp.Events)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w.Code)
	}
}

func TestListEventsETagFollowsWrites(t *testing.T) {
	monday := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	tuesday := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	closedAt := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	// two open events, then a clock-out closes the first one
	stored := []clock.Event{
		{Date: "2024-03-04", ClockIn: monday},
		{Date: "2024-03-05", ClockIn: tuesday},
	}
	tc := &fakeTimeClock{eventsFn: func(ctx context.Context, employeeID string) ([]clock.Event, error) {
		return stored, nil
	}}
	r := newAPIRouter(t, tc)

	etagOf := func() string {
		t.Helper()
		w := get(r, "/api/events")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		return w.Header().Get("ETag")
	}

	before := etagOf()

	stored = []clock.Event{
		{Date: "2024-03-04", ClockIn: monday, ClockOut: &closedAt},
		{Date: "2024-03-05", ClockIn: tuesday},
	}
	afterClose := etagOf()
	if afterClose == before {
		t.Fatalf("ETag did not change after an earlier event closed: %s", before)
	}

	stored = append(stored, clock.Event{Date: "2024-03-05", ClockIn: closedAt.Add(time.Hour)})
	if etagOf() == afterClose {
		t.Fatalf("ETag did not change after a clock-in")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("If-None-Match", before)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stale ETag must get a fresh body, status = %d", w.Code)
	}
}

func TestListEventsWithoutClockData(t *testing.T) {
	tc := &fakeTimeClock{eventsFn: func(ctx context.Context, employeeID string) ([]clock.Event, error) {
		return nil, clock.ErrStorageRead
	}}

	w := get(newAPIRouter(t, tc), "/api/events")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"events":[]`)) {
		t.Fatalf("expected an empty list, body=%s", w.Body.String())
	}
}

func TestEarningsEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		result     timeclock.Earnings
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "ok", result: timeclock.Earnings{Amount: 185.17, Hours: 8.4167, Completed: 1}, wantStatus: http.StatusOK},
		{name: "no data", err: clock.ErrStorageRead, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "failure", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := &fakeTimeClock{earningsFn: func(ctx context.Context, employeeID string) (timeclock.Earnings, error) {
				return tt.result, tt.err
			}}

			w := get(newAPIRouter(t, tc), "/api/earnings")

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp struct {
				Amount float64 `json:"amount"`
				Error  struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Fatalf("error code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
			if tt.wantStatus == http.StatusOK && resp.Amount != 185.17 {
				t.Fatalf("amount = %v", resp.Amount)
			}
		})
	}
}

func TestPreviewEarnings(t *testing.T) {
	r := newAPIRouter(t, &fakeTimeClock{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantAmount float64
		wantField  string
	}{
		{
			name:       "one completed interval",
			body:       `{"intervals":[{"clockIn":"2024-03-04 09:10:00","clockOut":"2024-03-04 17:35:00"},{"clockIn":"2024-03-05 08:00:00"}]}`,
			wantStatus: http.StatusOK,
			wantAmount: 185.17,
		},
		{
			name:       "bad timestamp",
			body:       `{"intervals":[{"clockIn":"09:10"}]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "intervals[0].clockIn",
		},
		{
			name:       "no intervals",
			body:       `{"intervals":[]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "intervals",
		},
		{
			name:       "clock out before clock in",
			body:       `{"intervals":[{"clockIn":"2024-03-04 17:00:00","clockOut":"2024-03-04 09:00:00"}]}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/earnings/preview", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Amount    float64 `json:"amount"`
					Hours     float64 `json:"hours"`
					Completed int     `json:"completedEvents"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if resp.Amount != tt.wantAmount || resp.Hours != 8.42 || resp.Completed != 1 {
					t.Fatalf("unexpected preview %+v", resp)
				}
				return
			}

			if tt.wantField == "" {
				return
			}

			var resp bindErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(resp.Error.Details.Fields) == 0 || resp.Error.Details.Fields[0].Field != tt.wantField {
				t.Fatalf("fields = %+v, want %s", resp.Error.Details.Fields, tt.wantField)
			}
		})
	}
}

func TestMe(t *testing.T) {
	profiles := &fakeProfiles{getFn: func(ctx context.Context, employeeID string) (employee.Employee, error) {
		if employeeID != "E1a2b3c4d" {
			return employee.Employee{}, employee.ErrNotFound
		}
		return employee.Employee{ID: employeeID, Name: "Alice", Email: "a@example.com", PasswordHash: "secret-hash", DOB: "1990-01-02"}, nil
	}}

	w := get(newAPIRouterWithProfiles(t, &fakeTimeClock{}, profiles), "/api/me")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("secret-hash")) {
		t.Fatalf("password hash leaked: %s", w.Body.String())
	}

	var resp employee.Employee
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != "E1a2b3c4d" || resp.Email != "a@example.com" || resp.DOB != "1990-01-02" {
		t.Fatalf("unexpected profile %+v", resp)
	}

	etag := w.Header().Get("ETag")
	if etag == "" || bytes.Contains([]byte(etag), []byte("secret-hash")) {
		t.Fatalf("unexpected ETag %q", etag)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	newAPIRouterWithProfiles(t, &fakeTimeClock{}, profiles).ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w.Code)
	}
}

func TestMeDeletedEmployee(t *testing.T) {
	profiles := &fakeProfiles{getFn: func(ctx context.Context, employeeID string) (employee.Employee, error) {
		return employee.Employee{}, employee.ErrNotFound
	}}

	w := get(newAPIRouterWithProfiles(t, &fakeTimeClock{}, profiles), "/api/me")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
