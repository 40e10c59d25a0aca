package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClockEventsRepo stores events as rows ordered by seq. Timestamps are
// timestamptz and are returned in loc.
type ClockEventsRepo struct {
	pool *pgxpool.Pool
	loc  *time.Location
	prom *observability.Prom
}

func NewClockEventsRepo(pool *pgxpool.Pool, loc *time.Location, prom *observability.Prom) *ClockEventsRepo {
	if loc == nil {
		loc = time.Local
	}
	return &ClockEventsRepo{pool: pool, loc: loc, prom: prom}
}

// Init has nothing to create; an employee's log is the set of their rows.
func (r *ClockEventsRepo) Init(ctx context.Context, employeeID string) error {
	return nil
}

func (r *ClockEventsRepo) AppendClockIn(ctx context.Context, employeeID string, e clock.Event) error {
	return observability.ObserveStore(ctx, r.prom, "events.append", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO clock_events (employee_id, work_date, clock_in, clock_out)
			VALUES ($1,$2,$3,$4)`,
			employeeID, e.Date, e.ClockIn, e.ClockOut,
		)
		return err
	})
}

// CloseOpenClockOut closes the oldest open row. The row is locked so two
// concurrent closes cannot stamp the same event.
func (r *ClockEventsRepo) CloseOpenClockOut(ctx context.Context, employeeID string, now time.Time) (closed clock.Event, err error) {
	err = observability.ObserveStore(ctx, r.prom, "events.close", func(ctx context.Context) error {
		var clockOut time.Time

		err := r.pool.QueryRow(ctx, `
			UPDATE clock_events
			SET clock_out = $2
			WHERE seq = (
				SELECT seq FROM clock_events
				WHERE employee_id = $1 AND clock_out IS NULL
				ORDER BY seq
				LIMIT 1
				FOR UPDATE
			)
			RETURNING work_date, clock_in, clock_out
		`, employeeID, now.Truncate(time.Second)).Scan(&closed.Date, &closed.ClockIn, &clockOut)

		if errors.Is(err, pgx.ErrNoRows) {
			return clock.ErrNoOpenSession
		}
		if err != nil {
			return err
		}

		closed.ClockIn = closed.ClockIn.In(r.loc)
		clockOut = clockOut.In(r.loc)
		closed.ClockOut = &clockOut
		return nil
	})
	return
}

func (r *ClockEventsRepo) ListEvents(ctx context.Context, employeeID string) (events []clock.Event, err error) {
	err = observability.ObserveStore(ctx, r.prom, "events.list", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, `
			SELECT work_date, clock_in, clock_out
			FROM clock_events
			WHERE employee_id = $1
			ORDER BY seq
		`, employeeID)
		if err != nil {
			return err
		}
		defer rows.Close()

		events = []clock.Event{}
		for rows.Next() {
			var e clock.Event
			if err := rows.Scan(&e.Date, &e.ClockIn, &e.ClockOut); err != nil {
				return err
			}

			e.ClockIn = e.ClockIn.In(r.loc)
			if e.ClockOut != nil {
				out := e.ClockOut.In(r.loc)
				e.ClockOut = &out
			}
			events = append(events, e)
		}
		return rows.Err()
	})
	return
}

func (r *ClockEventsRepo) Purge(ctx context.Context, employeeID string) error {
	return observability.ObserveStore(ctx, r.prom, "events.purge", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `DELETE FROM clock_events WHERE employee_id = $1`, employeeID)
		return err
	})
}
