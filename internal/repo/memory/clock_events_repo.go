package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
)

// ClockEventsRepo keeps rows in their stored textual form so timestamps
// round-trip exactly as they do on disk.
type ClockEventsRepo struct {
	mu   sync.RWMutex
	loc  *time.Location
	logs map[string][]clock.Row // {"employeeID": rows}
}

func NewClockEventsRepo(loc *time.Location) *ClockEventsRepo {
	if loc == nil {
		loc = time.Local
	}
	return &ClockEventsRepo{
		loc:  loc,
		logs: make(map[string][]clock.Row),
	}
}

func (r *ClockEventsRepo) Init(ctx context.Context, employeeID string) error {
	r.mu.Lock()
	if _, ok := r.logs[employeeID]; !ok {
		r.logs[employeeID] = []clock.Row{}
	}
	r.mu.Unlock()

	return nil
}

func (r *ClockEventsRepo) AppendClockIn(ctx context.Context, employeeID string, e clock.Event) error {
	r.mu.Lock()
	r.logs[employeeID] = append(r.logs[employeeID], clock.RowFromEvent(e))
	r.mu.Unlock()

	return nil
}

func (r *ClockEventsRepo) CloseOpenClockOut(ctx context.Context, employeeID string, now time.Time) (clock.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, ok := r.logs[employeeID]
	if !ok {
		return clock.Event{}, clock.ErrStorageRead
	}

	i, err := clock.CloseFirstOpen(rows, now.In(r.loc))
	if err != nil {
		return clock.Event{}, err
	}
	return clock.ClosedEvent(rows[i], now, r.loc), nil
}

func (r *ClockEventsRepo) ListEvents(ctx context.Context, employeeID string) ([]clock.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, ok := r.logs[employeeID]
	if !ok {
		return nil, clock.ErrStorageRead
	}

	events := make([]clock.Event, 0, len(rows))
	for _, row := range rows {
		if e, err := row.Parse(r.loc); err == nil {
			events = append(events, e)
		}
	}
	return events, nil
}

func (r *ClockEventsRepo) Purge(ctx context.Context, employeeID string) error {
	r.mu.Lock()
	delete(r.logs, employeeID)
	r.mu.Unlock()

	return nil
}
