// Package constants provides shared constants used throughout the quorum codebase.
// This includes file permissions, date layouts, markers and default limits
// that must stay consistent between the daily and weekly pipelines.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Date constants
const (
	// DateLayout is the layout of every date in filenames and report titles.
	DateLayout = "2006-01-02"

	// Day is one calendar day.
	Day = 24 * time.Hour
)

// Rendering markers shared by every report
const (
	// Missing marks a degraded or absent value in a rendered cell.
	Missing = "—"

	// RangeDash separates the bounds of a magnitude range.
	RangeDash = "–"

	// NoteSeparator joins the clauses of a free-text note.
	NoteSeparator = "；"

	// NameSeparator joins alternate names inside a note.
	NameSeparator = " / "

	// ListSeparator joins items of an inline list.
	ListSeparator = "、"
)

// Limit constants
const (
	// DefaultWindowDays is the default weekly window length.
	DefaultWindowDays = 7

	// FocusListSize is the length of each weekly focus ranking.
	FocusListSize = 10

	// DefaultHistoryLimit is the default number of ledger rows listed.
	DefaultHistoryLimit = 20

	// MaxNormalizePasses bounds the normalizer fixpoint loop.
	MaxNormalizePasses = 8
)
