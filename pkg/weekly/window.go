package weekly

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/agentstation/quorum/pkg/constants"
)

// FileSuffix ends every weekly report filename.
const FileSuffix = "_每周投资总结.md"

var (
	rangeTo    = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_to_(\d{4}-\d{2}-\d{2})` + regexp.QuoteMeta(FileSuffix) + `$`)
	rangeTilde = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})~(\d{4}-\d{2}-\d{2})` + regexp.QuoteMeta(FileSuffix) + `$`)
)

// Window returns the days-long window ending at end. A non-positive length
// is treated as one day.
func Window(end time.Time, days int) (time.Time, time.Time) {
	days = max(1, days)
	return end.AddDate(0, 0, -(days - 1)), end
}

// LatestWindow returns the window ending at the latest of dates, or at today
// when dates is empty.
func LatestWindow(dates []time.Time, days int, today time.Time) (time.Time, time.Time) {
	if len(dates) == 0 {
		return Window(today, days)
	}
	return Window(slices.MaxFunc(dates, time.Time.Compare), days)
}

// Dates returns every day from start to end inclusive.
func Dates(start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// MissingDates returns the window days absent from present.
func MissingDates(start, end time.Time, present []time.Time) []time.Time {
	var out []time.Time
	for _, d := range Dates(start, end) {
		if !slices.ContainsFunc(present, d.Equal) {
			out = append(out, d)
		}
	}
	return out
}

// FileName returns the weekly report filename of a window.
func FileName(start, end time.Time) string {
	return fmt.Sprintf("%s_to_%s%s", start.Format(constants.DateLayout), end.Format(constants.DateLayout), FileSuffix)
}

// ParseFileName extracts the window of a weekly report filename. Both the
// "_to_" and the "~" range forms are accepted.
func ParseFileName(name string) (start, end time.Time, ok bool) {
	m := rangeTo.FindStringSubmatch(name)
	if m == nil {
		m = rangeTilde.FindStringSubmatch(name)
	}
	if m == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(constants.DateLayout, m[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(constants.DateLayout, m[2])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
