// Package timeclock runs clock-in, clock-out and earnings for one employee
// at a time.
package timeclock

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/earnings"
	"github.com/geocoder89/punchclock/internal/lock"
)

type EventStore interface {
	AppendClockIn(ctx context.Context, employeeID string, e clock.Event) error
	CloseOpenClockOut(ctx context.Context, employeeID string, now time.Time) (clock.Event, error)
	ListEvents(ctx context.Context, employeeID string) ([]clock.Event, error)
}

type Service struct {
	events EventStore
	locker lock.Locker
	calc   earnings.Calculator
	loc    *time.Location
	now    func() time.Time
}

func New(events EventStore, locker lock.Locker, calc earnings.Calculator, loc *time.Location) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		events: events,
		locker: locker,
		calc:   calc,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// ClockIn appends an open event. An already open event does not block a new one.
func (s *Service) ClockIn(ctx context.Context, employeeID string) (clock.Event, error) {
	unlock, err := s.locker.Lock(ctx, employeeID)
	if err != nil {
		return clock.Event{}, fmt.Errorf("lock employee: %w", err)
	}
	defer unlock()

	e := clock.NewClockIn(s.clock())
	if err := s.events.AppendClockIn(ctx, employeeID, e); err != nil {
		return clock.Event{}, err
	}
	return e, nil
}

// ClockOut closes the first open event in storage order.
func (s *Service) ClockOut(ctx context.Context, employeeID string) (clock.Event, error) {
	unlock, err := s.locker.Lock(ctx, employeeID)
	if err != nil {
		return clock.Event{}, fmt.Errorf("lock employee: %w", err)
	}
	defer unlock()

	return s.events.CloseOpenClockOut(ctx, employeeID, s.clock())
}

func (s *Service) Events(ctx context.Context, employeeID string) ([]clock.Event, error) {
	return s.events.ListEvents(ctx, employeeID)
}

// Earnings is the result of a wage calculation over completed events.
type Earnings struct {
	Amount    float64
	Hours     float64
	Completed int
}

func (s *Service) Earnings(ctx context.Context, employeeID string) (Earnings, error) {
	events, err := s.events.ListEvents(ctx, employeeID)
	if err != nil {
		return Earnings{}, err
	}

	done := clock.Completed(events)
	intervals := earnings.FromEvents(done)

	return Earnings{
		Amount:    s.calc.Compute(intervals),
		Hours:     earnings.TotalSeconds(intervals) / 3600,
		Completed: len(done),
	}, nil
}
