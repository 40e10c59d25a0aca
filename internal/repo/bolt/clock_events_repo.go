package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/observability"
	bbolt "go.etcd.io/bbolt"
)

type ClockEventsRepo struct {
	db   *DB
	loc  *time.Location
	log  *slog.Logger
	prom *observability.Prom
}

func NewClockEventsRepo(db *DB, loc *time.Location, log *slog.Logger, prom *observability.Prom) *ClockEventsRepo {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &ClockEventsRepo{db: db, loc: loc, log: log, prom: prom}
}

func (r *ClockEventsRepo) Init(ctx context.Context, employeeID string) error {
	return observability.ObserveStore(ctx, r.prom, "events.init", func(ctx context.Context) error {
		return r.db.bolt.Update(func(tx *bbolt.Tx) error {
			_, err := tx.Bucket(eventsBucket).CreateBucketIfNotExists([]byte(employeeID))
			return err
		})
	})
}

func (r *ClockEventsRepo) AppendClockIn(ctx context.Context, employeeID string, e clock.Event) error {
	return observability.ObserveStore(ctx, r.prom, "events.append", func(ctx context.Context) error {
		val, err := json.Marshal(clock.RowFromEvent(e))
		if err != nil {
			return err
		}

		return r.db.bolt.Update(func(tx *bbolt.Tx) error {
			b, err := tx.Bucket(eventsBucket).CreateBucketIfNotExists([]byte(employeeID))
			if err != nil {
				return err
			}

			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			return b.Put(seqKey(seq), val)
		})
	})
}

func (r *ClockEventsRepo) CloseOpenClockOut(ctx context.Context, employeeID string, now time.Time) (closed clock.Event, err error) {
	err = observability.ObserveStore(ctx, r.prom, "events.close", func(ctx context.Context) error {
		return r.db.bolt.Update(func(tx *bbolt.Tx) error {
			b := tx.Bucket(eventsBucket).Bucket([]byte(employeeID))
			if b == nil {
				return fmt.Errorf("%w: %s", clock.ErrStorageRead, employeeID)
			}

			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				var row clock.Row
				if err := json.Unmarshal(v, &row); err != nil || !row.IsOpen() {
					continue
				}

				row.ClockOut = clock.FormatTime(now.In(r.loc))
				val, err := json.Marshal(row)
				if err != nil {
					return err
				}
				if err := b.Put(append([]byte(nil), k...), val); err != nil {
					return err
				}

				closed = clock.ClosedEvent(row, now, r.loc)
				return nil
			}
			return clock.ErrNoOpenSession
		})
	})
	return
}

func (r *ClockEventsRepo) ListEvents(ctx context.Context, employeeID string) (events []clock.Event, err error) {
	err = observability.ObserveStore(ctx, r.prom, "events.list", func(ctx context.Context) error {
		return r.db.bolt.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(eventsBucket).Bucket([]byte(employeeID))
			if b == nil {
				return fmt.Errorf("%w: %s", clock.ErrStorageRead, employeeID)
			}

			events = []clock.Event{}
			return b.ForEach(func(k, v []byte) error {
				var row clock.Row
				err := json.Unmarshal(v, &row)
				if err == nil {
					var e clock.Event
					if e, err = row.Parse(r.loc); err == nil {
						events = append(events, e)
						return nil
					}
				}

				perr := &clock.RowParseError{Line: int(binary.BigEndian.Uint64(k)), Row: row, Err: err}
				r.log.WarnContext(ctx, "skipping clock row", "employee_id", employeeID, "err", perr)
				return nil
			})
		})
	})
	return
}

func (r *ClockEventsRepo) Purge(ctx context.Context, employeeID string) error {
	return observability.ObserveStore(ctx, r.prom, "events.purge", func(ctx context.Context) error {
		return r.db.bolt.Update(func(tx *bbolt.Tx) error {
			err := tx.Bucket(eventsBucket).DeleteBucket([]byte(employeeID))
			if errors.Is(err, bbolt.ErrBucketNotFound) {
				return nil
			}
			return err
		})
	})
}
