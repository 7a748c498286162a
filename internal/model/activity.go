package model

import "time"

// Activity is one entry of a user's activity feed, already parsed into the
// shape its kind requires.
type Activity interface {
	OccurredAt() time.Time
	isActivity()
}

// PushActivity is a push of one or more commits. Commits is the length of the
// embedded commit list; Size is the payload's size field when present.
type PushActivity struct {
	At      time.Time
	Commits int
	Size    int
}

// PullRequestActivity is a pull request state change.
type PullRequestActivity struct {
	At     time.Time
	Action string
}

// IssueActivity is an issue state change.
type IssueActivity struct {
	At     time.Time
	Action string
}

// WatchActivity is a star on a repository.
type WatchActivity struct {
	At time.Time
}

// PublicActivity is a repository being made public.
type PublicActivity struct {
	At time.Time
}

// UnknownActivity is any feed entry the aggregator does not count.
type UnknownActivity struct {
	At   time.Time
	Type string
}

func (a PushActivity) OccurredAt() time.Time        { return a.At }
func (a PullRequestActivity) OccurredAt() time.Time { return a.At }
func (a IssueActivity) OccurredAt() time.Time       { return a.At }
func (a WatchActivity) OccurredAt() time.Time       { return a.At }
func (a PublicActivity) OccurredAt() time.Time      { return a.At }
func (a UnknownActivity) OccurredAt() time.Time     { return a.At }

func (PushActivity) isActivity()        {}
func (PullRequestActivity) isActivity() {}
func (IssueActivity) isActivity()       {}
func (WatchActivity) isActivity()       {}
func (PublicActivity) isActivity()      {}
func (UnknownActivity) isActivity()     {}
