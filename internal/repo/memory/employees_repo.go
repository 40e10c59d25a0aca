package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/geocoder89/punchclock/internal/domain/employee"
)

type EmployeesRepo struct {
	mu    sync.RWMutex
	items []employee.Employee // insertion order
}

func NewEmployeesRepo() *EmployeesRepo {
	return &EmployeesRepo{}
}

func (r *EmployeesRepo) Create(ctx context.Context, e employee.Employee) error {
	r.mu.Lock()
	r.items = append(r.items, e)
	r.mu.Unlock()

	return nil
}

func (r *EmployeesRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return r.find(func(e employee.Employee) bool { return e.Email == email })
}

func (r *EmployeesRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.find(func(e employee.Employee) bool { return e.ID == id })
}

func (r *EmployeesRepo) find(match func(employee.Employee) bool) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.items {
		if match(e) {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (r *EmployeesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	r.items = slices.DeleteFunc(r.items, func(e employee.Employee) bool { return e.ID == id })
	r.mu.Unlock()

	return nil
}
