package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the textual timestamp format used by every record file.
// No zone is encoded; values are read in the configured location.
const (
	Layout     = "2006-01-02 15:04:05"
	DateLayout = "2006-01-02"
)

var (
	ErrNoOpenSession = errors.New("no active clock-in")
	ErrStorageRead   = errors.New("clock data not found")
)

// Event is one clock-in row. ClockOut is nil while the event is open.
type Event struct {
	Date     string     `json:"date"`
	ClockIn  time.Time  `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut,omitempty"`
}

func (e Event) Open() bool {
	return e.ClockOut == nil
}

func (e Event) Duration() time.Duration {
	if e.ClockOut == nil {
		return 0
	}
	return e.ClockOut.Sub(e.ClockIn)
}

// NewClockIn builds the open event appended by a clock-in at now.
func NewClockIn(now time.Time) Event {
	return Event{
		Date:    now.Format(DateLayout),
		ClockIn: now.Truncate(time.Second),
	}
}

// Row is the raw textual form of an event as stored in flat records.
type Row struct {
	Date     string `json:"date"`
	ClockIn  string `json:"clock_in"`
	ClockOut string `json:"clock_out"`
}

var Header = []string{"date", "clock_in", "clock_out"}

func (r Row) Record() []string {
	return []string{r.Date, r.ClockIn, r.ClockOut}
}

func RowFromRecord(rec []string) Row {
	var r Row
	if len(rec) > 0 {
		r.Date = rec[0]
	}
	if len(rec) > 1 {
		r.ClockIn = rec[1]
	}
	if len(rec) > 2 {
		r.ClockOut = rec[2]
	}
	return r
}

func RowFromEvent(e Event) Row {
	r := Row{Date: e.Date, ClockIn: FormatTime(e.ClockIn)}
	if e.ClockOut != nil {
		r.ClockOut = FormatTime(*e.ClockOut)
	}
	return r
}

// RowParseError describes a stored row that could not be read back.
type RowParseError struct {
	Line int
	Row  Row
	Err  error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("row %d (%q, %q, %q): %v", e.Line, e.Row.Date, e.Row.ClockIn, e.Row.ClockOut, e.Err)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}

var (
	errHeaderRow    = errors.New("duplicate header row")
	errMissingStart = errors.New("missing clock_in")
)

// Parse converts a stored row into an Event in loc.
func (r Row) Parse(loc *time.Location) (Event, error) {
	in := strings.TrimSpace(r.ClockIn)

	if in == Header[1] {
		return Event{}, errHeaderRow
	}
	if in == "" {
		return Event{}, errMissingStart
	}

	clockIn, err := ParseTime(in, loc)
	if err != nil {
		return Event{}, err
	}

	e := Event{Date: r.Date, ClockIn: clockIn}

	if out := strings.TrimSpace(r.ClockOut); out != "" {
		clockOut, err := ParseTime(out, loc)
		if err != nil {
			return Event{}, err
		}
		e.ClockOut = &clockOut
	}

	if e.Date == "" {
		e.Date = clockIn.Format(DateLayout)
	}

	return e, nil
}

// IsOpen reports whether the stored row has no clock_out yet.
func (r Row) IsOpen() bool {
	return strings.TrimSpace(r.ClockOut) == ""
}

// CloseFirstOpen sets clock_out on the first open row in storage order and
// returns its index. Rows after the first open one are left untouched.
func CloseFirstOpen(rows []Row, now time.Time) (int, error) {
	for i := range rows {
		if rows[i].IsOpen() {
			rows[i].ClockOut = FormatTime(now)
			return i, nil
		}
	}
	return -1, ErrNoOpenSession
}

// ClosedEvent reports the event for a row CloseFirstOpen just stamped at now.
// When the row's clock_in cannot be read, only the stamped clock_out is set.
func ClosedEvent(r Row, now time.Time, loc *time.Location) Event {
	if loc == nil {
		loc = time.Local
	}
	if e, err := r.Parse(loc); err == nil {
		return e
	}

	out := now.In(loc).Truncate(time.Second)
	return Event{Date: r.Date, ClockOut: &out}
}

func FormatTime(t time.Time) string {
	return t.Format(Layout)
}

func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(Layout, s, loc)
}

// Completed returns only events that have both endpoints.
func Completed(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.Open() {
			out = append(out, e)
		}
	}
	return out
}
