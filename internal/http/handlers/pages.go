package handlers

import (
	"context"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/http/flash"
	"github.com/geocoder89/punchclock/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 3 * time.Second

// Page is the data every HTML template receives.
type Page struct {
	Title    string
	Flashes  []string
	LoggedIn bool

	SiteName string
	RadiusKm float64

	Name     string
	Earnings float64
	Events   []EventRow
}

// EventRow is a clock event as the dashboard shows it.
type EventRow struct {
	ClockIn  string
	ClockOut string
}

func newPage(ctx *gin.Context, title string) Page {
	_, loggedIn := middlewares.EmployeeIDFromContext(ctx)
	return Page{
		Title:    title,
		LoggedIn: loggedIn,
	}
}

// render pops pending notices right before writing the page so a notice
// added by this same request is shown too.
func render(ctx *gin.Context, status int, name string, page Page) {
	page.Flashes = flash.Pop(ctx)
	ctx.HTML(status, name, page)
}

func eventRows(events []clock.Event) []EventRow {
	rows := make([]EventRow, 0, len(events))
	for _, e := range events {
		row := EventRow{ClockIn: clock.FormatTime(e.ClockIn)}
		if e.ClockOut != nil {
			row.ClockOut = clock.FormatTime(*e.ClockOut)
		}
		rows = append(rows, row)
	}
	return rows
}

func storeContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), storeTimeout)
}
