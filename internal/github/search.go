package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"

	"github-activity-sync/internal/model"
)

// Kinds accepted by the issue search qualifier.
const (
	searchKindPR    = "pr"
	searchKindIssue = "issue"
)

// SearchCommitTimes returns the authored time of every commit by login whose
// committer date falls inside the window. The window is searched one calendar
// month at a time to stay under the search API's result cap.
func (c *Client) SearchCommitTimes(ctx context.Context, login string, w model.SyncWindow) ([]time.Time, error) {
	var times []time.Time
	for _, chunk := range w.MonthChunks() {
		query := fmt.Sprintf("author:%s committer-date:%s..%s", login, model.FormatDate(chunk.Start), model.FormatDate(chunk.End))
		results, err := collectPages(ctx, c.opts.PageSize, func(ctx context.Context, page int) ([]*github.CommitResult, error) {
			c.logger.Debug("Searching commits", "query", query, "page", page)
			opts := &github.SearchOptions{
				Sort:        "committer-date",
				Order:       "asc",
				ListOptions: github.ListOptions{Page: page, PerPage: c.opts.PageSize},
			}
			var res *github.CommitsSearchResult
			err := c.call(ctx, c.opts.SearchTimeout, opSearchCommits, func(ctx context.Context) error {
				var err error
				res, _, err = c.gh.Search.Commits(ctx, query, opts)
				return err
			})
			if err != nil {
				return nil, err
			}
			return res.Commits, nil
		})
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if at, ok := commitTime(r); ok {
				times = append(times, at)
			}
		}
	}
	return times, nil
}

// commitTime prefers the author date and falls back to the committer date.
func commitTime(r *github.CommitResult) (time.Time, bool) {
	commit := r.GetCommit()
	if commit == nil {
		return time.Time{}, false
	}
	if d := commit.GetAuthor().GetDate(); !d.IsZero() {
		return d.UTC(), true
	}
	if d := commit.GetCommitter().GetDate(); !d.IsZero() {
		return d.UTC(), true
	}
	return time.Time{}, false
}

// SearchPullRequestTimes returns the creation time of every pull request
// opened by login inside the window.
func (c *Client) SearchPullRequestTimes(ctx context.Context, login string, w model.SyncWindow) ([]time.Time, error) {
	return c.searchIssueTimes(ctx, login, searchKindPR, w)
}

// SearchIssueTimes returns the creation time of every issue opened by login
// inside the window.
func (c *Client) SearchIssueTimes(ctx context.Context, login string, w model.SyncWindow) ([]time.Time, error) {
	return c.searchIssueTimes(ctx, login, searchKindIssue, w)
}

func (c *Client) searchIssueTimes(ctx context.Context, login, kind string, w model.SyncWindow) ([]time.Time, error) {
	var times []time.Time
	for _, chunk := range w.MonthChunks() {
		query := fmt.Sprintf("author:%s type:%s created:%s..%s", login, kind, model.FormatDate(chunk.Start), model.FormatDate(chunk.End))
		issues, err := collectPages(ctx, c.opts.PageSize, func(ctx context.Context, page int) ([]*github.Issue, error) {
			c.logger.Debug("Searching issues", "query", query, "page", page)
			opts := &github.SearchOptions{
				Sort:        "created",
				Order:       "asc",
				ListOptions: github.ListOptions{Page: page, PerPage: c.opts.PageSize},
			}
			var res *github.IssuesSearchResult
			err := c.call(ctx, c.opts.SearchTimeout, opSearchIssues, func(ctx context.Context) error {
				var err error
				res, _, err = c.gh.Search.Issues(ctx, query, opts)
				return err
			})
			if err != nil {
				return nil, err
			}
			return res.Issues, nil
		})
		if err != nil {
			return nil, err
		}
		for _, issue := range issues {
			if issue.CreatedAt == nil {
				continue
			}
			times = append(times, issue.GetCreatedAt().UTC())
		}
	}
	return times, nil
}
