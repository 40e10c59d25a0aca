// Package directory registers, authenticates and removes employees.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/lock"
	"github.com/geocoder89/punchclock/internal/security"
)

type EmployeeStore interface {
	Create(ctx context.Context, e employee.Employee) error
	GetByEmail(ctx context.Context, email string) (employee.Employee, error)
	GetByID(ctx context.Context, id string) (employee.Employee, error)
	Delete(ctx context.Context, id string) error
}

// EventLog is the part of the clock event store the directory manages.
type EventLog interface {
	Init(ctx context.Context, employeeID string) error
	Purge(ctx context.Context, employeeID string) error
}

type Directory struct {
	employees    EmployeeStore
	events       EventLog
	locker       lock.Locker
	uniqueEmails bool
}

func New(employees EmployeeStore, events EventLog, locker lock.Locker, uniqueEmails bool) *Directory {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Directory{
		employees:    employees,
		events:       events,
		locker:       locker,
		uniqueEmails: uniqueEmails,
	}
}

// CreateEmployee stores a new employee with a bcrypt password hash and an
// empty clock event log.
func (d *Directory) CreateEmployee(ctx context.Context, req employee.CreateRequest) (employee.Employee, error) {
	if d.uniqueEmails {
		_, err := d.employees.GetByEmail(ctx, req.Email)
		switch {
		case err == nil:
			return employee.Employee{}, employee.ErrDuplicateEmail
		case !errors.Is(err, employee.ErrNotFound):
			return employee.Employee{}, err
		}
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("hash password: %w", err)
	}

	e := employee.NewFromCreateRequest(req, hash)

	if err := d.employees.Create(ctx, e); err != nil {
		return employee.Employee{}, fmt.Errorf("store employee: %w", err)
	}

	if err := d.events.Init(ctx, e.ID); err != nil {
		return employee.Employee{}, fmt.Errorf("init clock log: %w", err)
	}

	return e, nil
}

// Authenticate checks the password of the first employee with this email.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (employee.Employee, error) {
	e, err := d.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return employee.Employee{}, employee.ErrUnknownEmail
		}
		return employee.Employee{}, err
	}

	ok, err := security.MatchPassword(e.PasswordHash, password)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("%w: %v", employee.ErrInvalidPassword, err)
	}
	if !ok {
		return employee.Employee{}, employee.ErrInvalidPassword
	}

	return e, nil
}

func (d *Directory) Get(ctx context.Context, employeeID string) (employee.Employee, error) {
	return d.employees.GetByID(ctx, employeeID)
}

// DeleteEmployee removes the directory record and the clock log. Unknown
// ids are a no-op.
func (d *Directory) DeleteEmployee(ctx context.Context, employeeID string) error {
	unlock, err := d.locker.Lock(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("lock employee: %w", err)
	}
	defer unlock()

	if err := d.employees.Delete(ctx, employeeID); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}

	if err := d.events.Purge(ctx, employeeID); err != nil {
		return fmt.Errorf("purge clock log: %w", err)
	}

	return nil
}
