package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type EmployeeDirectory interface {
	CreateEmployee(ctx context.Context, req employee.CreateRequest) (employee.Employee, error)
	Authenticate(ctx context.Context, email, password string) (employee.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) error
}

type AccountHandler struct {
	directory     EmployeeDirectory
	secureCookies bool
}

func NewAccountHandler(directory EmployeeDirectory, secureCookies bool) *AccountHandler {
	return &AccountHandler{directory: directory, secureCookies: secureCookies}
}

func (h *AccountHandler) CreateAccountPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "create_account.html", newPage(ctx, "Create account"))
}

func (h *AccountHandler) CreateAccount(ctx *gin.Context) {
	var req employee.CreateRequest

	if fields, ok := BindForm(ctx, &req); !ok {
		redirectWithFlash(ctx, "/create_account", formErrorNotice(fields))
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	_, err := h.directory.CreateEmployee(cctx, req)
	if err != nil {
		if errors.Is(err, employee.ErrDuplicateEmail) {
			redirectWithFlash(ctx, "/create_account", "An account with that email already exists.")
			return
		}

		slog.ErrorContext(ctx.Request.Context(), "create account failed", "err", err)
		redirectWithFlash(ctx, "/create_account", "Could not create the account. Please try again.")
		return
	}

	redirectWithFlash(ctx, "/login", "Account created successfully! Please log in.")
}

// DeleteAccount removes the employee and their clock data, then ends the session.
func (h *AccountHandler) DeleteAccount(ctx *gin.Context) {
	employeeID, _ := middlewares.EmployeeIDFromContext(ctx)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	if err := h.directory.DeleteEmployee(cctx, employeeID); err != nil {
		slog.ErrorContext(ctx.Request.Context(), "delete account failed", "err", err)
		redirectWithFlash(ctx, "/dashboard", "Could not delete the account. Please try again.")
		return
	}

	middlewares.ClearSessionCookie(ctx, h.secureCookies)
	redirectWithFlash(ctx, "/", "Account deleted successfully!")
}

func formErrorNotice(fields []FieldError) string {
	if len(fields) == 0 {
		return "Please check the form and try again."
	}
	f := fields[0]
	return "Invalid " + f.Field + ": " + f.Message + "."
}
