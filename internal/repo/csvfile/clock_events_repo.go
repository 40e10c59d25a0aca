package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/observability"
)

// ClockEventsRepo keeps one <employee_id>_clock.csv file per employee under
// the data/ directory.
type ClockEventsRepo struct {
	paths Paths
	loc   *time.Location
	log   *slog.Logger
	prom  *observability.Prom
}

func NewClockEventsRepo(root string, loc *time.Location, log *slog.Logger, prom *observability.Prom) (*ClockEventsRepo, error) {
	p := Paths{Root: root}
	if err := ensureDir(p.EventsDir()); err != nil {
		return nil, fmt.Errorf("create events dir: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &ClockEventsRepo{paths: p, loc: loc, log: log, prom: prom}, nil
}

func (r *ClockEventsRepo) observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return observability.ObserveStore(ctx, r.prom, op, fn)
}

// Init creates a header-only event file. An existing file is left as is.
func (r *ClockEventsRepo) Init(ctx context.Context, employeeID string) error {
	return r.observe(ctx, "events.init", func(ctx context.Context) error {
		path, err := r.paths.Events(employeeID)
		if err != nil {
			return err
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return nil
			}
			return err
		}
		f.Close()

		return rewrite(path, clock.Header, nil)
	})
}

func (r *ClockEventsRepo) AppendClockIn(ctx context.Context, employeeID string, e clock.Event) error {
	return r.observe(ctx, "events.append", func(ctx context.Context) error {
		path, err := r.paths.Events(employeeID)
		if err != nil {
			return err
		}
		return appendRecord(path, clock.Header, clock.RowFromEvent(e).Record())
	})
}

// CloseOpenClockOut stamps now on the first open row and rewrites the file.
// Other lines are carried over as they were read. Lines that are not
// well-formed CSV are never closed.
func (r *ClockEventsRepo) CloseOpenClockOut(ctx context.Context, employeeID string, now time.Time) (closed clock.Event, err error) {
	err = r.observe(ctx, "events.close", func(ctx context.Context) error {
		path, err := r.paths.Events(employeeID)
		if err != nil {
			return err
		}

		stored, err := r.load(path)
		if err != nil {
			return err
		}

		rows := make([]clock.Row, 0, len(stored))
		at := make([]int, 0, len(stored))
		for j, s := range stored {
			if s.err == nil {
				rows = append(rows, s.row)
				at = append(at, j)
			}
		}

		i, err := clock.CloseFirstOpen(rows, now.In(r.loc))
		if err != nil {
			return err
		}

		lines := make([]string, len(stored))
		for j, s := range stored {
			lines[j] = s.raw
		}
		if lines[at[i]], err = encodeLine(rows[i].Record()); err != nil {
			return err
		}
		if err := rewrite(path, clock.Header, lines); err != nil {
			return err
		}

		closed = clock.ClosedEvent(rows[i], now, r.loc)
		return nil
	})
	return
}

// ListEvents returns every readable event in storage order. Unreadable rows
// are logged with their line number and skipped.
func (r *ClockEventsRepo) ListEvents(ctx context.Context, employeeID string) (events []clock.Event, err error) {
	err = r.observe(ctx, "events.list", func(ctx context.Context) error {
		path, err := r.paths.Events(employeeID)
		if err != nil {
			return err
		}

		stored, err := r.load(path)
		if err != nil {
			return err
		}

		events = make([]clock.Event, 0, len(stored))
		for _, s := range stored {
			e, err := s.event(r.loc)
			if err != nil {
				perr := &clock.RowParseError{Line: s.num, Row: s.row, Err: err}
				r.log.WarnContext(ctx, "skipping clock row", "employee_id", employeeID, "err", perr)
				continue
			}
			events = append(events, e)
		}
		return nil
	})
	return
}

// Purge removes the employee's event file. A missing file is not an error.
func (r *ClockEventsRepo) Purge(ctx context.Context, employeeID string) error {
	return r.observe(ctx, "events.purge", func(ctx context.Context) error {
		path, err := r.paths.Events(employeeID)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

func (r *ClockEventsRepo) Ping(ctx context.Context) error {
	return ensureDir(r.paths.EventsDir())
}

type storedRow struct {
	line
	row clock.Row
}

func (s storedRow) event(loc *time.Location) (clock.Event, error) {
	if s.err != nil {
		return clock.Event{}, s.err
	}
	return s.row.Parse(loc)
}

// load reads the file as rows, dropping the leading header. A missing file
// is reported as clock.ErrStorageRead.
func (r *ClockEventsRepo) load(path string) ([]storedRow, error) {
	lines, err := readLines(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", clock.ErrStorageRead, path)
		}
		return nil, err
	}

	if len(lines) > 0 && lines[0].err == nil && isHeader(lines[0].rec, clock.Header) {
		lines = lines[1:]
	}

	rows := make([]storedRow, len(lines))
	for i, l := range lines {
		rows[i] = storedRow{line: l, row: clock.RowFromRecord(l.rec)}
	}
	return rows, nil
}
