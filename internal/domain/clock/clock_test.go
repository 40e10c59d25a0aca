package clock

import (
	"errors"
	"testing"
	"time"
)

func TestRowParse(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name     string
		row      Row
		wantErr  bool
		wantOpen bool
	}{
		{name: "closed", row: Row{"2024-11-29", "2024-11-29 09:10:00", "2024-11-29 17:35:00"}},
		{name: "open", row: Row{"2024-11-29", "2024-11-29 09:10:00", ""}, wantOpen: true},
		{name: "duplicate_header", row: Row{"date", "clock_in", "clock_out"}, wantErr: true},
		{name: "blank_clock_in", row: Row{"2024-11-29", "", ""}, wantErr: true},
		{name: "bad_clock_in", row: Row{"2024-11-29", "29/11/2024 09:10", ""}, wantErr: true},
		{name: "bad_clock_out", row: Row{"2024-11-29", "2024-11-29 09:10:00", "later"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.row.Parse(loc)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %+v", tt.row)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Open() != tt.wantOpen {
				t.Fatalf("Open() = %v, want %v", e.Open(), tt.wantOpen)
			}
		})
	}
}

func TestCloseFirstOpen(t *testing.T) {
	now := time.Date(2024, 11, 29, 17, 35, 0, 0, time.UTC)

	rows := []Row{
		{"2024-11-28", "2024-11-28 09:00:00", "2024-11-28 17:00:00"},
		{"2024-11-29", "2024-11-29 08:00:00", ""},
		{"2024-11-29", "2024-11-29 09:10:00", ""},
	}

	idx, err := CloseFirstOpen(rows, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("closed index = %d, want 1", idx)
	}
	if rows[1].ClockOut != "2024-11-29 17:35:00" {
		t.Fatalf("clock_out = %q", rows[1].ClockOut)
	}
	if rows[2].ClockOut != "" {
		t.Fatalf("second open row should stay open, got %q", rows[2].ClockOut)
	}
}

func TestCloseFirstOpen_NoneOpen(t *testing.T) {
	rows := []Row{{"2024-11-28", "2024-11-28 09:00:00", "2024-11-28 17:00:00"}}

	_, err := CloseFirstOpen(rows, time.Now())
	if !errors.Is(err, ErrNoOpenSession) {
		t.Fatalf("err = %v, want ErrNoOpenSession", err)
	}
}

func TestClosedEvent(t *testing.T) {
	now := time.Date(2024, 11, 29, 17, 35, 0, 0, time.UTC)

	tests := []struct {
		name        string
		row         Row
		wantClockIn bool
	}{
		{"readable row", Row{"2024-11-29", "2024-11-29 08:00:00", "2024-11-29 17:35:00"}, true},
		{"missing clock_in", Row{"2024-11-29", "", "2024-11-29 17:35:00"}, false},
		{"garbled clock_in", Row{"2024-11-29", "eight-ish", "2024-11-29 17:35:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ClosedEvent(tt.row, now, time.UTC)

			if e.ClockOut == nil || !e.ClockOut.Equal(now) {
				t.Fatalf("clock_out = %v, want %v", e.ClockOut, now)
			}
			if e.Date != "2024-11-29" {
				t.Fatalf("date = %q", e.Date)
			}
			if got := !e.ClockIn.IsZero(); got != tt.wantClockIn {
				t.Fatalf("clock_in set = %v, want %v", got, tt.wantClockIn)
			}
		})
	}
}

func TestRowFromEventRoundTrip(t *testing.T) {
	in := time.Date(2024, 11, 29, 9, 10, 0, 0, time.UTC)
	out := in.Add(8*time.Hour + 25*time.Minute)

	row := RowFromEvent(Event{Date: "2024-11-29", ClockIn: in, ClockOut: &out})

	if row.ClockIn != "2024-11-29 09:10:00" || row.ClockOut != "2024-11-29 17:35:00" {
		t.Fatalf("unexpected row %+v", row)
	}

	e, err := row.Parse(time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if e.Duration() != 8*time.Hour+25*time.Minute {
		t.Fatalf("duration = %v", e.Duration())
	}
}
