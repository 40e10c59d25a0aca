package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/observability"
)

// EmployeesRepo keeps the directory in a single employee_data.csv file.
// Duplicate emails are stored as given; lookups return the first match.
type EmployeesRepo struct {
	paths Paths
	log   *slog.Logger
	prom  *observability.Prom
}

func NewEmployeesRepo(root string, log *slog.Logger, prom *observability.Prom) (*EmployeesRepo, error) {
	if err := ensureDir(root); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &EmployeesRepo{paths: Paths{Root: root}, log: log, prom: prom}, nil
}

func (r *EmployeesRepo) observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return observability.ObserveStore(ctx, r.prom, op, fn)
}

func (r *EmployeesRepo) Create(ctx context.Context, e employee.Employee) error {
	return r.observe(ctx, "employees.create", func(ctx context.Context) error {
		return appendRecord(r.paths.Directory(), employee.Header, e.Record())
	})
}

func (r *EmployeesRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return r.find(ctx, "employees.get_by_email", func(e employee.Employee) bool {
		return e.Email == email
	})
}

func (r *EmployeesRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.find(ctx, "employees.get_by_id", func(e employee.Employee) bool {
		return e.ID == id
	})
}

func (r *EmployeesRepo) find(ctx context.Context, op string, match func(employee.Employee) bool) (found employee.Employee, err error) {
	err = r.observe(ctx, op, func(ctx context.Context) error {
		lines, err := r.load(ctx)
		if err != nil {
			return err
		}

		for _, l := range lines {
			e, ok := employee.FromRecord(l.rec)
			if ok && match(e) {
				found = e
				return nil
			}
		}
		return employee.ErrNotFound
	})
	return
}

// Delete rewrites the directory without the employee's rows. Unreadable
// lines are kept as they were. A missing id or a missing file is not an error.
func (r *EmployeesRepo) Delete(ctx context.Context, id string) error {
	return r.observe(ctx, "employees.delete", func(ctx context.Context) error {
		lines, err := r.load(ctx)
		if err != nil {
			return err
		}

		kept := make([]string, 0, len(lines))
		removed := false

		for _, l := range lines {
			if e, ok := employee.FromRecord(l.rec); ok && l.err == nil && e.ID == id {
				removed = true
				continue
			}
			kept = append(kept, l.raw)
		}

		if !removed {
			return nil
		}
		return rewrite(r.paths.Directory(), employee.Header, kept)
	})
}

func (r *EmployeesRepo) Ping(ctx context.Context) error {
	return ensureDir(r.paths.Root)
}

// load returns data lines; header rows are dropped and a missing file reads
// as an empty directory. Lines that are not well-formed CSV are logged and
// kept out of lookups but returned with err set.
func (r *EmployeesRepo) load(ctx context.Context) ([]line, error) {
	lines, err := readLines(r.paths.Directory())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read employee directory: %w", err)
	}

	out := lines[:0]
	for _, l := range lines {
		if l.err != nil {
			r.log.WarnContext(ctx, "skipping directory row", "line", l.num, "err", l.err)
			out = append(out, line{num: l.num, raw: l.raw, err: l.err})
			continue
		}
		if isHeader(l.rec, employee.Header) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
