package model

import (
	"fmt"
	"time"
)

// SyncMode selects the fetch strategy for a sync.
type SyncMode string

const (
	// ModeStandard reads the recent activity feed.
	ModeStandard SyncMode = "standard"
	// ModeDeep uses the search API and the stargazer graph over an arbitrary range.
	ModeDeep SyncMode = "deep"
)

// ParseSyncMode validates a mode string. An empty string is the standard mode.
func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case "", ModeStandard:
		return ModeStandard, nil
	case ModeDeep:
		return ModeDeep, nil
	}
	return "", fmt.Errorf("unknown sync mode %q", s)
}

// SyncWindow is the resolved date range of one sync. Start and End are
// calendar dates (UTC midnight), both inclusive.
type SyncWindow struct {
	Start time.Time
	End   time.Time
	Mode  SyncMode
}

// DateChunk is one contiguous, inclusive sub-range of a window.
type DateChunk struct {
	Start time.Time
	End   time.Time
}

// StartBoundary is the first instant inside the window.
func (w SyncWindow) StartBoundary() time.Time {
	return DateOf(w.Start)
}

// EndBoundary is the last instant inside the window.
func (w SyncWindow) EndBoundary() time.Time {
	return DateOf(w.End).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// IsBefore reports whether t precedes the window start.
func (w SyncWindow) IsBefore(t time.Time) bool {
	return t.Before(w.StartBoundary())
}

// IsAfter reports whether t is later than the window end.
func (w SyncWindow) IsAfter(t time.Time) bool {
	return t.After(w.EndBoundary())
}

// String renders the window as "start..end".
func (w SyncWindow) String() string {
	return FormatDate(w.Start) + ".." + FormatDate(w.End)
}

// MonthChunks partitions the window into calendar-month aligned chunks. The
// first chunk starts at Start, the last ends at End, and consecutive chunks
// neither overlap nor leave gaps.
func (w SyncWindow) MonthChunks() []DateChunk {
	start, end := DateOf(w.Start), DateOf(w.End)
	var chunks []DateChunk
	for cursor := start; !cursor.After(end); {
		chunkEnd := time.Date(cursor.Year(), cursor.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, DateChunk{Start: cursor, End: chunkEnd})
		cursor = chunkEnd.AddDate(0, 0, 1)
	}
	return chunks
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
