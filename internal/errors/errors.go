// internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrSyncInProgress is returned when another sync for the same account holds the lock.
var ErrSyncInProgress = stderrors.New("a sync for this account is already running")

// ErrAccountNotFound is returned when the account to sync does not exist.
var ErrAccountNotFound = stderrors.New("account not found")

// ErrInvalidRepoFormat is returned when a repository full name is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// UpstreamError wraps a failed call to the GitHub API, either a transport
// failure or a non-success response.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ValidationError rejects caller input before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Stage names one step of the sync pipeline.
type Stage string

const (
	StageResolveWindow         Stage = "resolve_window"
	StageFetchRepositories     Stage = "fetch_repositories"
	StageReconcileRepositories Stage = "reconcile_repositories"
	StageFetchEvents           Stage = "fetch_events"
	StageResolveUsername       Stage = "resolve_username"
	StageFetchCommitRange      Stage = "fetch_commit_range"
	StageFetchPRRange          Stage = "fetch_pr_range"
	StageFetchIssueRange       Stage = "fetch_issue_range"
	StageFetchStarRange        Stage = "fetch_star_range"
	StageReconcileDailyStats   Stage = "reconcile_daily_stats"
)

// StageError reports which pipeline step failed. ReposCommitted is true when
// the repository upsert had already been committed, so repository metadata is
// updated even though the sync as a whole failed.
type StageError struct {
	Stage          Stage
	ReposCommitted bool
	Err            error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("sync failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

// IsUpstream reports whether err is, or wraps, an UpstreamError.
func IsUpstream(err error) bool {
	var u *UpstreamError
	return stderrors.As(err, &u)
}
