package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/earnings"
	"github.com/geocoder89/punchclock/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type Profiles interface {
	Get(ctx context.Context, employeeID string) (employee.Employee, error)
}

type APIHandler struct {
	clock    TimeClock
	profiles Profiles
	calc     earnings.Calculator
	loc      *time.Location
}

func NewAPIHandler(tc TimeClock, profiles Profiles, calc earnings.Calculator, loc *time.Location) *APIHandler {
	return &APIHandler{clock: tc, profiles: profiles, calc: calc, loc: loc}
}

// Me returns the logged-in employee's profile. The password hash never
// leaves the server.
func (h *APIHandler) Me(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	e, err := h.profiles.Get(cctx, employeeID)
	if errors.Is(err, employee.ErrNotFound) {
		RespondNotFound(ctx, "Employee not found")
		return
	}
	if err != nil {
		RespondInternal(ctx, "Could not load profile")
		return
	}

	respondVersioned(ctx, profileETag(e), e)
}

type eventsResponse struct {
	EmployeeID string      `json:"employeeId"`
	Events     []clock.Row `json:"events"`
}

// ListEvents returns the employee's events in storage order. Clients can
// revalidate with If-None-Match.
func (h *APIHandler) ListEvents(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	events, err := h.clock.Events(cctx, employeeID)
	if err != nil && !errors.Is(err, clock.ErrStorageRead) {
		RespondInternal(ctx, "Could not load clock events")
		return
	}

	rows := make([]clock.Row, 0, len(events))
	for _, e := range events {
		rows = append(rows, clock.RowFromEvent(e))
	}

	respondVersioned(ctx, eventsETag(employeeID, events), eventsResponse{EmployeeID: employeeID, Events: rows})
}

// Earnings previews the wage calculation without touching the dashboard.
func (h *APIHandler) Earnings(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	result, err := h.clock.Earnings(cctx, employeeID)
	if errors.Is(err, clock.ErrStorageRead) {
		RespondNotFound(ctx, "No clock data for this employee")
		return
	}
	if err != nil {
		RespondInternal(ctx, "Could not calculate earnings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"employeeId":      employeeID,
		"amount":          result.Amount,
		"hours":           result.Hours,
		"completedEvents": result.Completed,
	})
}

type previewRequest struct {
	Intervals []previewInterval `json:"intervals" binding:"required,min=1,max=500,dive"`
}

type previewInterval struct {
	ClockIn  string `json:"clockIn" binding:"required,datetime=2006-01-02 15:04:05"`
	ClockOut string `json:"clockOut" binding:"omitempty,datetime=2006-01-02 15:04:05"`
}

// PreviewEarnings prices caller-supplied intervals at the configured wage.
// Nothing is stored.
func (h *APIHandler) PreviewEarnings(ctx *gin.Context) {
	var req previewRequest
	if !BindJSON(ctx, &req) {
		return
	}

	events := make([]clock.Event, 0, len(req.Intervals))
	for i, iv := range req.Intervals {
		e, err := clock.Row{ClockIn: iv.ClockIn, ClockOut: iv.ClockOut}.Parse(h.loc)
		if err != nil {
			RespondBadRequest(ctx, "Invalid interval", gin.H{"index": i})
			return
		}
		if e.ClockOut != nil && e.ClockOut.Before(e.ClockIn) {
			RespondBadRequest(ctx, "clockOut is before clockIn", gin.H{"index": i})
			return
		}
		events = append(events, e)
	}

	done := clock.Completed(events)
	intervals := earnings.FromEvents(done)

	ctx.JSON(http.StatusOK, gin.H{
		"amount":          h.calc.Compute(intervals),
		"hours":           earnings.Round2(earnings.TotalSeconds(intervals) / 3600),
		"hourlyWage":      h.calc.HourlyWage,
		"completedEvents": len(done),
	})
}
