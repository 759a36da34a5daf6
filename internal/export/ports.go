// Package export defines the outbound ports for timesheet export.
package export

import (
	"context"
	"time"
)

// TimesheetRow is one exported line: a closed time entry joined with its
// client and project names.
type TimesheetRow struct {
	EntryID     string
	Date        string
	ClientName  string
	ProjectName string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	DurationMS  int64
}

// Hours returns the tracked duration in decimal hours, as written to the
// sheet.
func (r TimesheetRow) Hours() float64 {
	return float64(r.DurationMS) / float64(time.Hour/time.Millisecond)
}

// TimesheetWriter appends rows to an external timesheet.
type TimesheetWriter interface {
	Append(ctx context.Context, row TimesheetRow) (rowRef string, err error)
}
