// internal/model/models.go
package model

import (
	"time"
)

// Account is the external identity whose activity is synced. The access token
// is issued by the login flow and used for every upstream call.
type Account struct {
	ID          int64
	GithubID    int64
	Login       string
	AccessToken string
}

// Repository represents the metadata of a GitHub repository.
type Repository struct {
	GithubRepoID int64 `json:"github_repo_id"`
	Name         string
	FullName     string
	Private      bool
	Language     *string
	URL          string
	Description  *string
}

// DailyCounts holds the four per-day activity counters.
type DailyCounts struct {
	CommitCount int
	PRCount     int
	IssueCount  int
	StarDelta   int
}

// DailyStats maps a calendar date (UTC midnight) to its counters.
type DailyStats map[time.Time]*DailyCounts

// At returns the counters for the given day, creating them if needed.
func (s DailyStats) At(day time.Time) *DailyCounts {
	day = DateOf(day)
	c, ok := s[day]
	if !ok {
		c = &DailyCounts{}
		s[day] = c
	}
	return c
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
