// Package export renders an employee's clock events as an XLSX timesheet.
package export

import (
	"fmt"
	"io"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/earnings"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Timesheet"

var header = []interface{}{"Date", "Clock In", "Clock Out", "Hours"}

// Timesheet holds what goes into one workbook.
type Timesheet struct {
	EmployeeName string
	Events       []clock.Event
	Calculator   earnings.Calculator
}

// WriteXLSX writes one row per event followed by a totals row. Open events
// are listed with an empty clock out and do not count toward the totals.
func (ts Timesheet) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	if err := f.SetSheetRow(SheetName, "A1", &[]interface{}{"Employee", ts.EmployeeName}); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A3", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A3", "D3", bold); err != nil {
		return err
	}

	row := 4
	for _, e := range ts.Events {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}

		values := []interface{}{e.Date, clock.FormatTime(e.ClockIn), "", ""}
		if e.ClockOut != nil {
			values[2] = clock.FormatTime(*e.ClockOut)
			values[3] = earnings.Round2(e.Duration().Hours())
		}

		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
		row++
	}

	intervals := earnings.FromEvents(clock.Completed(ts.Events))
	hours := earnings.TotalSeconds(intervals) / 3600

	totals, err := excelize.CoordinatesToCellName(1, row+1)
	if err != nil {
		return err
	}
	totalRow := []interface{}{"Total", "", "", earnings.Round2(hours)}
	if err := f.SetSheetRow(SheetName, totals, &totalRow); err != nil {
		return err
	}

	pay, err := excelize.CoordinatesToCellName(1, row+2)
	if err != nil {
		return err
	}
	payRow := []interface{}{"Earnings", fmt.Sprintf("at $%.2f/h", ts.Calculator.HourlyWage), "", ts.Calculator.ComputeEvents(ts.Events)}
	if err := f.SetSheetRow(SheetName, pay, &payRow); err != nil {
		return err
	}

	if err := f.SetColWidth(SheetName, "A", "D", 20); err != nil {
		return err
	}

	return f.Write(w)
}
