package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EmployeesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEmployeesRepo(pool *pgxpool.Pool, prom *observability.Prom) *EmployeesRepo {
	return &EmployeesRepo{pool: pool, prom: prom}
}

func (r *EmployeesRepo) Create(ctx context.Context, e employee.Employee) error {
	return observability.ObserveStore(ctx, r.prom, "employees.create", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO employees (id, name, email, password_hash, dob, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			e.ID, e.Name, e.Email, e.PasswordHash, e.DOB, e.CreatedAt,
		)
		return err
	})
}

// GetByEmail returns the earliest registered employee with this email.
func (r *EmployeesRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return r.getOne(ctx, "employees.get_by_email",
		`SELECT id, name, email, password_hash, dob, created_at
		FROM employees
		WHERE email = $1
		ORDER BY seq
		LIMIT 1`, email)
}

func (r *EmployeesRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.getOne(ctx, "employees.get_by_id",
		`SELECT id, name, email, password_hash, dob, created_at
		FROM employees
		WHERE id = $1`, id)
}

func (r *EmployeesRepo) getOne(ctx context.Context, op, query string, arg string) (e employee.Employee, err error) {
	err = observability.ObserveStore(ctx, r.prom, op, func(ctx context.Context) error {
		err := r.pool.QueryRow(ctx, query, arg).Scan(
			&e.ID,
			&e.Name,
			&e.Email,
			&e.PasswordHash,
			&e.DOB,
			&e.CreatedAt,
		)

		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrNotFound
		}
		return err
	})
	return
}

func (r *EmployeesRepo) Delete(ctx context.Context, id string) error {
	return observability.ObserveStore(ctx, r.prom, "employees.delete", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
		return err
	})
}
