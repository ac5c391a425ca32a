package alerts

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/agentstation/quorum/pkg/plan"
)

// Alert represents a status notification.
type Alert struct {
	Level   Level
	Message string
	Details []string
	Err     error
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{
		Level:   level,
		Message: message,
	}
}

// NewError creates a new error alert.
func NewError(message string) *Alert {
	return New(LevelError, message)
}

// NewWarning creates a new warning alert.
func NewWarning(message string) *Alert {
	return New(LevelWarning, message)
}

// NewInfo creates a new info alert.
func NewInfo(message string) *Alert {
	return New(LevelInfo, message)
}

// NewSuccess creates a new success alert.
func NewSuccess(message string) *Alert {
	return New(LevelSuccess, message)
}

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails adds additional context details to the alert.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns a string representation of the alert.
func (a *Alert) String() string {
	message := fmt.Sprintf("%s %s", a.Level.Icon(), a.Message)
	if a.Err != nil {
		message += fmt.Sprintf(": %v", a.Err)
	}
	return message
}

// Writer handles alert output.
type Writer interface {
	WriteAlert(alert *Alert) error
}

// WriterFunc is an adapter to allow functions to be used as Writers.
type WriterFunc func(*Alert) error

// WriteAlert calls the function.
func (f WriterFunc) WriteAlert(alert *Alert) error {
	return f(alert)
}

// DiscardWriter is a Writer that discards all alerts.
var DiscardWriter Writer = WriterFunc(func(*Alert) error { return nil })

// NewWriterTo creates a Writer that writes to an io.Writer. Details are
// indented below the message.
func NewWriterTo(w io.Writer, color bool) Writer {
	return WriterFunc(func(alert *Alert) error {
		line := alert.String()
		if color {
			line = alert.Level.Color() + line + ResetColor()
		}
		var b strings.Builder
		b.WriteString(line)
		b.WriteString("\n")
		for _, d := range alert.Details {
			b.WriteString("  - ")
			b.WriteString(d)
			b.WriteString("\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// FromFindings turns gate findings into alerts: an error per source with
// missing plan items and a warning per source with extra or remapped names.
func FromFindings(findings []plan.Findings) []*Alert {
	var out []*Alert
	for _, f := range findings {
		if len(f.Missing) > 0 {
			out = append(out, NewError(fmt.Sprintf("%s is missing %d plan item(s)", f.Source, len(f.Missing))).
				WithDetails(f.Missing...))
		}
		if len(f.Extra) == 0 && len(f.Mapped) == 0 {
			continue
		}
		var details []string
		for _, e := range f.Extra {
			details = append(details, "not in plan: "+e)
		}
		for _, m := range f.Mapped {
			details = append(details, fmt.Sprintf("%s → %s (%s)", m.From, m.To, m.Method))
		}
		out = append(out, NewWarning(fmt.Sprintf("%s drifted from the plan", f.Source)).WithDetails(details...))
	}
	return out
}

// FromMissing turns the missing map of a gate error into alerts, one per
// source in source order.
func FromMissing(missing map[string][]string) []*Alert {
	sources := make([]string, 0, len(missing))
	for s := range missing {
		sources = append(sources, s)
	}
	slices.Sort(sources)
	out := make([]*Alert, 0, len(sources))
	for _, s := range sources {
		out = append(out, NewError(fmt.Sprintf("%s is missing %d plan item(s)", s, len(missing[s]))).
			WithDetails(missing[s]...))
	}
	return out
}

// WriteAll writes alerts in order and stops at the first failure.
func WriteAll(w Writer, alerts ...*Alert) error {
	for _, a := range alerts {
		if err := w.WriteAlert(a); err != nil {
			return err
		}
	}
	return nil
}
