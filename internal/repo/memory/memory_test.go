package memory

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/repo/repotest"
)

func TestEmployeesRepoBehaviour(t *testing.T) {
	repotest.RunEmployees(t, func(t *testing.T) repotest.EmployeesStore {
		return NewEmployeesRepo()
	})
}

func TestClockEventsRepoBehaviour(t *testing.T) {
	repotest.RunClockEvents(t, time.UTC, func(t *testing.T) repotest.ClockEventsStore {
		return NewClockEventsRepo(time.UTC)
	})
}

func TestCloseUnreadableOpenRowReportsStampedEvent(t *testing.T) {
	r := NewClockEventsRepo(time.UTC)
	r.logs["E1a2b3c4d"] = []clock.Row{{Date: "2024-03-05", ClockIn: "yesterday-ish"}}

	now := time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)
	closed, err := r.CloseOpenClockOut(context.Background(), "E1a2b3c4d", now)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Date != "2024-03-05" || closed.ClockOut == nil || !closed.ClockOut.Equal(now) {
		t.Fatalf("unexpected closed event %+v", closed)
	}
	if r.logs["E1a2b3c4d"][0].ClockOut != "2024-03-05 17:00:00" {
		t.Fatalf("row not stamped: %+v", r.logs["E1a2b3c4d"][0])
	}
}
