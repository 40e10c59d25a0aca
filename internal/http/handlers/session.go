package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/geo"
	"github.com/geocoder89/punchclock/internal/http/middlewares"
	"github.com/geocoder89/punchclock/internal/observability"
	"github.com/gin-gonic/gin"
)

type SessionIssuer interface {
	Issue(employeeID, name string) (token string, expiresAt time.Time, err error)
}

type SessionHandler struct {
	directory     EmployeeDirectory
	sessions      SessionIssuer
	fence         geo.Fence
	prom          *observability.Prom
	secureCookies bool
}

func NewSessionHandler(directory EmployeeDirectory, sessions SessionIssuer, fence geo.Fence, prom *observability.Prom, secureCookies bool) *SessionHandler {
	return &SessionHandler{
		directory:     directory,
		sessions:      sessions,
		fence:         fence,
		prom:          prom,
		secureCookies: secureCookies,
	}
}

func (h *SessionHandler) LoginPage(ctx *gin.Context) {
	page := newPage(ctx, "Log in")
	page.SiteName = h.fence.Name
	page.RadiusKm = h.fence.RadiusKm
	render(ctx, http.StatusOK, "login.html", page)
}

// Login checks the client's position against the geofence before looking
// at credentials. Any failure clears the session.
func (h *SessionHandler) Login(ctx *gin.Context) {
	var req employee.LoginRequest

	if fields, ok := BindForm(ctx, &req); !ok {
		h.fail(ctx, "invalid_form", loginFormNotice(fields))
		return
	}

	lat, errLat := strconv.ParseFloat(req.Latitude, 64)
	lon, errLon := strconv.ParseFloat(req.Longitude, 64)
	if errLat != nil || errLon != nil {
		h.fail(ctx, "no_location", locationNotice)
		return
	}

	inside, distance, err := h.fence.Check(lat, lon)
	if err != nil {
		h.fail(ctx, "no_location", locationNotice)
		return
	}
	if !inside {
		slog.InfoContext(ctx.Request.Context(), "login outside geofence", "distance_km", distance)
		h.fail(ctx, "outside_fence", fmt.Sprintf("Login allowed only from within %g km of %s", h.fence.RadiusKm, h.fence.Name))
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	e, err := h.directory.Authenticate(cctx, req.Email, req.Password)
	switch {
	case errors.Is(err, employee.ErrUnknownEmail):
		h.fail(ctx, "unknown_email", "Invalid email.")
		return
	case errors.Is(err, employee.ErrInvalidPassword):
		h.fail(ctx, "invalid_password", "Invalid password.")
		return
	case err != nil:
		slog.ErrorContext(ctx.Request.Context(), "authenticate failed", "err", err)
		h.fail(ctx, "error", "Login is unavailable right now. Please try again.")
		return
	}

	token, expiresAt, err := h.sessions.Issue(e.ID, e.Name)
	if err != nil {
		slog.ErrorContext(ctx.Request.Context(), "issue session failed", "err", err)
		h.fail(ctx, "error", "Login is unavailable right now. Please try again.")
		return
	}

	h.prom.IncLogin("success")
	middlewares.SetSessionCookie(ctx, token, expiresAt, h.secureCookies)
	redirectWithFlash(ctx, "/dashboard", "Login successful!")
}

func (h *SessionHandler) Logout(ctx *gin.Context) {
	middlewares.ClearSessionCookie(ctx, h.secureCookies)
	redirectWithFlash(ctx, "/", "You have been logged out.")
}

func (h *SessionHandler) fail(ctx *gin.Context, result, notice string) {
	h.prom.IncLogin(result)
	middlewares.ClearSessionCookie(ctx, h.secureCookies)
	redirectWithFlash(ctx, "/login", notice)
}

const locationNotice = "Unable to capture location. Please enable location services."

func loginFormNotice(fields []FieldError) string {
	for _, f := range fields {
		if f.Field == "latitude" || f.Field == "longitude" {
			return locationNotice
		}
	}
	return "Email and password are required."
}
