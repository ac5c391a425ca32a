// Package cmdutil provides shared flags and parsing utilities for quorum commands.
package cmdutil

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/weekly"
)

// DayFlags holds the flags of commands that work on one day.
type DayFlags struct {
	Date string
}

// AddDayFlags adds the --date flag to a command.
func AddDayFlags(cmd *cobra.Command) *DayFlags {
	flags := &DayFlags{}
	cmd.Flags().StringVarP(&flags.Date, "date", "d", "",
		"Report date (YYYY-MM-DD, default today)")
	return flags
}

// Day returns the selected day, or the day of now when no date is given.
func (f *DayFlags) Day(now time.Time) (time.Time, error) {
	if f.Date == "" {
		return Today(now), nil
	}
	return ParseDate("date", f.Date)
}

// WindowFlags holds the flags that select a weekly window.
type WindowFlags struct {
	Start string
	End   string
	Days  int
}

// AddWindowFlags adds --start, --end and --days to a command.
func AddWindowFlags(cmd *cobra.Command) *WindowFlags {
	flags := &WindowFlags{}
	cmd.Flags().StringVar(&flags.Start, "start", "",
		"Window start (YYYY-MM-DD, requires --end)")
	cmd.Flags().StringVar(&flags.End, "end", "",
		"Window end (YYYY-MM-DD, default latest daily summary)")
	cmd.Flags().IntVar(&flags.Days, "days", 0,
		"Window length in days when --start is not given")
	return flags
}

// Window resolves the selected window. Without --end the window ends at the
// latest of dates, or at today when there are none.
func (f *WindowFlags) Window(dates []time.Time, defaultDays int, now time.Time) (time.Time, time.Time, error) {
	days := defaultDays
	if f.Days != 0 {
		if f.Days < 1 {
			return time.Time{}, time.Time{}, errors.NewValidationError("days", f.Days, "must be at least 1")
		}
		days = f.Days
	}

	switch {
	case f.Start != "" && f.End == "":
		return time.Time{}, time.Time{}, errors.NewValidationError("start", f.Start, "requires --end")
	case f.Start != "":
		start, err := ParseDate("start", f.Start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := ParseDate("end", f.End)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, errors.NewValidationError("end", f.End, "is before --start")
		}
		return start, end, nil
	case f.End != "":
		end, err := ParseDate("end", f.End)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start, end := weekly.Window(end, days)
		return start, end, nil
	default:
		start, end := weekly.LatestWindow(dates, days, Today(now))
		return start, end, nil
	}
}

// ParseDate parses a YYYY-MM-DD flag value.
func ParseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		return time.Time{}, errors.NewValidationError(field, value, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

// Today returns the calendar day of now as a UTC midnight.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
