package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/geocoder89/punchclock/internal/cache"
	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/earnings"
	"github.com/geocoder89/punchclock/internal/export"
	"github.com/geocoder89/punchclock/internal/http/flash"
	"github.com/geocoder89/punchclock/internal/http/middlewares"
	"github.com/geocoder89/punchclock/internal/observability"
	"github.com/geocoder89/punchclock/internal/timeclock"
	"github.com/gin-gonic/gin"
)

type TimeClock interface {
	ClockIn(ctx context.Context, employeeID string) (clock.Event, error)
	ClockOut(ctx context.Context, employeeID string) (clock.Event, error)
	Events(ctx context.Context, employeeID string) ([]clock.Event, error)
	Earnings(ctx context.Context, employeeID string) (timeclock.Earnings, error)
}

type ClockHandler struct {
	clock    TimeClock
	earnings *cache.Cache[float64]
	calc     earnings.Calculator
	prom     *observability.Prom
}

func NewClockHandler(tc TimeClock, earningsCache *cache.Cache[float64], calc earnings.Calculator, prom *observability.Prom) *ClockHandler {
	return &ClockHandler{
		clock:    tc,
		earnings: earningsCache,
		calc:     calc,
		prom:     prom,
	}
}

func (h *ClockHandler) Home(ctx *gin.Context) {
	render(ctx, http.StatusOK, "home.html", newPage(ctx, "Home"))
}

// Dashboard lists the employee's clock events and shows the last calculated
// earnings once.
func (h *ClockHandler) Dashboard(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	page := newPage(ctx, "Dashboard")
	page.Name = middlewares.EmployeeNameFromContext(ctx)
	page.Earnings, _ = h.earnings.Pop(employeeID)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	events, err := h.clock.Events(cctx, employeeID)
	switch {
	case errors.Is(err, clock.ErrStorageRead):
		flash.Now(ctx, "Clock data file not found.")
	case err != nil:
		slog.ErrorContext(ctx.Request.Context(), "list clock events failed", "err", err)
		flash.Now(ctx, "Could not load clock data.")
	default:
		page.Events = eventRows(events)
	}

	render(ctx, http.StatusOK, "dashboard.html", page)
}

func (h *ClockHandler) ClockIn(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	if _, err := h.clock.ClockIn(cctx, employeeID); err != nil {
		h.prom.IncClockAction("clock_in", "error")
		slog.ErrorContext(ctx.Request.Context(), "clock in failed", "err", err)
		redirectWithFlash(ctx, "/dashboard", "Could not clock in. Please try again.")
		return
	}

	h.prom.IncClockAction("clock_in", "ok")
	redirectWithFlash(ctx, "/dashboard", "Clocked in successfully!")
}

func (h *ClockHandler) ClockOut(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	_, err := h.clock.ClockOut(cctx, employeeID)
	switch {
	case errors.Is(err, clock.ErrNoOpenSession), errors.Is(err, clock.ErrStorageRead):
		h.prom.IncClockAction("clock_out", "no_open_session")
		redirectWithFlash(ctx, "/dashboard", "No active clock-in record found.")
		return
	case err != nil:
		h.prom.IncClockAction("clock_out", "error")
		slog.ErrorContext(ctx.Request.Context(), "clock out failed", "err", err)
		redirectWithFlash(ctx, "/dashboard", "Could not clock out. Please try again.")
		return
	}

	h.prom.IncClockAction("clock_out", "ok")
	redirectWithFlash(ctx, "/dashboard", "Clocked out successfully!")
}

// CalculateEarnings computes wages over completed events and hands the
// amount to the next dashboard render.
func (h *ClockHandler) CalculateEarnings(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	result, err := h.clock.Earnings(cctx, employeeID)
	switch {
	case errors.Is(err, clock.ErrStorageRead):
		redirectWithFlash(ctx, "/dashboard", "Clock data file not found.")
		return
	case err != nil:
		slog.ErrorContext(ctx.Request.Context(), "calculate earnings failed", "err", err)
		redirectWithFlash(ctx, "/dashboard", "Could not calculate earnings. Please try again.")
		return
	}

	if result.Completed == 0 {
		redirectWithFlash(ctx, "/dashboard", "No completed clock-ins found.")
		return
	}

	h.earnings.Set(employeeID, result.Amount)
	redirectWithFlash(ctx, "/dashboard", fmt.Sprintf("Earnings calculated successfully: $%.2f", result.Amount))
}

// Timesheet streams the employee's events as an XLSX workbook.
func (h *ClockHandler) Timesheet(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	events, err := h.clock.Events(cctx, employeeID)
	if err != nil && !errors.Is(err, clock.ErrStorageRead) {
		slog.ErrorContext(ctx.Request.Context(), "timesheet export failed", "err", err)
		redirectWithFlash(ctx, "/dashboard", "Could not export the timesheet.")
		return
	}

	ts := export.Timesheet{
		EmployeeName: middlewares.EmployeeNameFromContext(ctx),
		Events:       events,
		Calculator:   h.calc,
	}

	ctx.Header("Content-Disposition", `attachment; filename="timesheet-`+employeeID+`.xlsx"`)
	ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Status(http.StatusOK)

	if err := ts.WriteXLSX(ctx.Writer); err != nil {
		slog.ErrorContext(ctx.Request.Context(), "write timesheet failed", "err", err)
	}
}
