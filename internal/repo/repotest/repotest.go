// Package repotest holds behaviour checks shared by every storage backend.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/domain/employee"
)

type EmployeesStore interface {
	Create(ctx context.Context, e employee.Employee) error
	GetByEmail(ctx context.Context, email string) (employee.Employee, error)
	GetByID(ctx context.Context, id string) (employee.Employee, error)
	Delete(ctx context.Context, id string) error
}

type ClockEventsStore interface {
	Init(ctx context.Context, employeeID string) error
	AppendClockIn(ctx context.Context, employeeID string, e clock.Event) error
	CloseOpenClockOut(ctx context.Context, employeeID string, now time.Time) (clock.Event, error)
	ListEvents(ctx context.Context, employeeID string) ([]clock.Event, error)
	Purge(ctx context.Context, employeeID string) error
}

func at(loc *time.Location, s string) time.Time {
	t, err := time.ParseInLocation(clock.Layout, s, loc)
	if err != nil {
		panic(err)
	}
	return t
}

// RunEmployees checks directory semantics against a fresh store per subtest.
func RunEmployees(t *testing.T, newStore func(t *testing.T) EmployeesStore) {
	t.Helper()
	ctx := context.Background()

	alice := employee.Employee{ID: "E1a2b3c4d", Name: "Alice", Email: "alice@example.com", PasswordHash: "h1", DOB: "1990-01-02"}
	bob := employee.Employee{ID: "E00000001", Name: "Bob", Email: "bob@example.com", PasswordHash: "h2", DOB: "1985-05-06"}

	t.Run("create then lookup", func(t *testing.T) {
		s := newStore(t)

		if err := s.Create(ctx, alice); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := s.Create(ctx, bob); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := s.GetByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("get by email: %v", err)
		}
		if got.ID != alice.ID || got.Name != alice.Name || got.PasswordHash != alice.PasswordHash || got.DOB != alice.DOB {
			t.Fatalf("got %+v, want %+v", got, alice)
		}

		got, err = s.GetByID(ctx, bob.ID)
		if err != nil {
			t.Fatalf("get by id: %v", err)
		}
		if got.Email != bob.Email {
			t.Fatalf("got %+v, want %+v", got, bob)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetByEmail(ctx, "nobody@example.com")
		if !errors.Is(err, employee.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate email returns first match", func(t *testing.T) {
		s := newStore(t)

		first := alice
		second := alice
		second.ID = "E99999999"
		second.PasswordHash = "other"

		if err := s.Create(ctx, first); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := s.Create(ctx, second); err != nil {
			t.Fatalf("create duplicate: %v", err)
		}

		got, err := s.GetByEmail(ctx, alice.Email)
		if err != nil {
			t.Fatalf("get by email: %v", err)
		}
		if got.ID != first.ID {
			t.Fatalf("expected first match %s, got %s", first.ID, got.ID)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)

		_ = s.Create(ctx, alice)
		_ = s.Create(ctx, bob)

		if err := s.Delete(ctx, alice.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}

		if _, err := s.GetByEmail(ctx, alice.Email); !errors.Is(err, employee.ErrNotFound) {
			t.Fatalf("deleted employee still found: %v", err)
		}
		if _, err := s.GetByEmail(ctx, bob.Email); err != nil {
			t.Fatalf("other employee lost: %v", err)
		}

		if err := s.Delete(ctx, alice.ID); err != nil {
			t.Fatalf("second delete should be a no-op: %v", err)
		}
	})
}

// RunClockEvents checks event log semantics against a fresh store per subtest.
func RunClockEvents(t *testing.T, loc *time.Location, newStore func(t *testing.T) ClockEventsStore) {
	t.Helper()
	ctx := context.Background()
	const id = "E1a2b3c4d"

	t.Run("init gives an empty log", func(t *testing.T) {
		s := newStore(t)

		if err := s.Init(ctx, id); err != nil {
			t.Fatalf("init: %v", err)
		}

		events, err := s.ListEvents(ctx, id)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("expected no events, got %d", len(events))
		}
	})

	t.Run("clock in then out", func(t *testing.T) {
		s := newStore(t)
		_ = s.Init(ctx, id)

		in := at(loc, "2024-03-04 09:10:00")
		out := at(loc, "2024-03-04 17:35:00")

		if err := s.AppendClockIn(ctx, id, clock.NewClockIn(in)); err != nil {
			t.Fatalf("append: %v", err)
		}

		events, err := s.ListEvents(ctx, id)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(events) != 1 || !events[0].Open() {
			t.Fatalf("expected one open event, got %+v", events)
		}

		closed, err := s.CloseOpenClockOut(ctx, id, out)
		if err != nil {
			t.Fatalf("close: %v", err)
		}
		if closed.ClockOut == nil || !closed.ClockOut.Equal(out) {
			t.Fatalf("closed event has wrong clock_out: %+v", closed)
		}

		events, err = s.ListEvents(ctx, id)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected one event, got %d", len(events))
		}

		e := events[0]
		if e.Date != "2024-03-04" || !e.ClockIn.Equal(in) || e.ClockOut == nil || !e.ClockOut.Equal(out) {
			t.Fatalf("unexpected event %+v", e)
		}
		if e.Duration() != 8*time.Hour+25*time.Minute {
			t.Fatalf("duration = %v", e.Duration())
		}
	})

	t.Run("close with nothing open", func(t *testing.T) {
		s := newStore(t)
		_ = s.Init(ctx, id)

		_, err := s.CloseOpenClockOut(ctx, id, at(loc, "2024-03-04 17:00:00"))
		if !errors.Is(err, clock.ErrNoOpenSession) {
			t.Fatalf("expected ErrNoOpenSession, got %v", err)
		}
	})

	t.Run("close touches only the first open event", func(t *testing.T) {
		s := newStore(t)
		_ = s.Init(ctx, id)

		_ = s.AppendClockIn(ctx, id, clock.NewClockIn(at(loc, "2024-03-04 09:00:00")))
		_ = s.AppendClockIn(ctx, id, clock.NewClockIn(at(loc, "2024-03-04 10:00:00")))

		if _, err := s.CloseOpenClockOut(ctx, id, at(loc, "2024-03-04 12:00:00")); err != nil {
			t.Fatalf("close: %v", err)
		}

		events, err := s.ListEvents(ctx, id)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected two events, got %d", len(events))
		}
		if events[0].Open() {
			t.Fatalf("first event should be closed")
		}
		if !events[1].Open() {
			t.Fatalf("second event should stay open")
		}

		if _, err := s.CloseOpenClockOut(ctx, id, at(loc, "2024-03-04 13:00:00")); err != nil {
			t.Fatalf("second close: %v", err)
		}
		if _, err := s.CloseOpenClockOut(ctx, id, at(loc, "2024-03-04 14:00:00")); !errors.Is(err, clock.ErrNoOpenSession) {
			t.Fatalf("expected ErrNoOpenSession after closing both, got %v", err)
		}
	})

	t.Run("events keep storage order", func(t *testing.T) {
		s := newStore(t)
		_ = s.Init(ctx, id)

		days := []string{"2024-03-04", "2024-03-05", "2024-03-06"}
		for _, d := range days {
			_ = s.AppendClockIn(ctx, id, clock.NewClockIn(at(loc, d+" 09:00:00")))
			if _, err := s.CloseOpenClockOut(ctx, id, at(loc, d+" 17:00:00")); err != nil {
				t.Fatalf("close %s: %v", d, err)
			}
		}

		events, err := s.ListEvents(ctx, id)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(events) != len(days) {
			t.Fatalf("expected %d events, got %d", len(days), len(events))
		}
		for i, d := range days {
			if events[i].Date != d {
				t.Fatalf("event %d date = %s, want %s", i, events[i].Date, d)
			}
		}
	})

	t.Run("purge", func(t *testing.T) {
		s := newStore(t)
		_ = s.Init(ctx, id)
		_ = s.AppendClockIn(ctx, id, clock.NewClockIn(at(loc, "2024-03-04 09:00:00")))

		if err := s.Purge(ctx, id); err != nil {
			t.Fatalf("purge: %v", err)
		}

		events, err := s.ListEvents(ctx, id)
		if err == nil && len(events) != 0 {
			t.Fatalf("expected no events after purge, got %d", len(events))
		}

		if err := s.Purge(ctx, id); err != nil {
			t.Fatalf("second purge should be a no-op: %v", err)
		}
	})

	t.Run("logs are per employee", func(t *testing.T) {
		s := newStore(t)
		_ = s.Init(ctx, id)
		_ = s.Init(ctx, "E22222222")

		_ = s.AppendClockIn(ctx, id, clock.NewClockIn(at(loc, "2024-03-04 09:00:00")))

		events, err := s.ListEvents(ctx, "E22222222")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("expected other employee's log to be empty, got %d", len(events))
		}
	})
}
