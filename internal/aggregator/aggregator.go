// Package aggregator turns fetched activity into per-day counters.
package aggregator

import (
	"time"

	"github-activity-sync/internal/model"
)

var (
	countedPRActions    = map[string]bool{"opened": true, "reopened": true, "closed": true}
	countedIssueActions = map[string]bool{"opened": true, "reopened": true}
)

// Classify buckets feed activity by UTC calendar date and applies the
// per-kind counting rules. Kinds it does not know about are ignored.
func Classify(activities []model.Activity) model.DailyStats {
	stats := model.DailyStats{}
	for _, a := range activities {
		switch a := a.(type) {
		case model.PushActivity:
			stats.At(a.At).CommitCount += pushCommits(a)
		case model.PullRequestActivity:
			if countedPRActions[a.Action] {
				stats.At(a.At).PRCount++
			}
		case model.IssueActivity:
			if countedIssueActions[a.Action] {
				stats.At(a.At).IssueCount++
			}
		case model.WatchActivity, model.PublicActivity:
			stats.At(a.OccurredAt()).StarDelta++
		}
	}
	return stats
}

// pushCommits counts the listed commits, falling back to the payload size and
// then to a single commit.
func pushCommits(p model.PushActivity) int {
	switch {
	case p.Commits > 0:
		return p.Commits
	case p.Size > 0:
		return p.Size
	default:
		return 1
	}
}

// CountTimestamps buckets four independent timestamp lists by UTC calendar
// date. Every timestamp adds exactly one to its counter, so a commit search hit
// counts once no matter how many commits a push carried.
func CountTimestamps(commits, prs, issues, stars []time.Time) model.DailyStats {
	stats := model.DailyStats{}
	for _, t := range commits {
		stats.At(t).CommitCount++
	}
	for _, t := range prs {
		stats.At(t).PRCount++
	}
	for _, t := range issues {
		stats.At(t).IssueCount++
	}
	for _, t := range stars {
		stats.At(t).StarDelta++
	}
	return stats
}
