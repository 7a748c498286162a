package github

import (
	"context"

	"github.com/google/go-github/v62/github"

	"github-activity-sync/internal/model"
)

// FetchEvents reads the authenticated user's activity feed, newest first, and
// returns the entries that fall inside the window. Entries newer than the
// window are skipped; the first entry older than the window ends the scan.
func (c *Client) FetchEvents(ctx context.Context, w model.SyncWindow) ([]model.Activity, error) {
	login, err := c.CurrentLogin(ctx)
	if err != nil {
		return nil, err
	}

	var activities []model.Activity
	fetch := func(ctx context.Context, page int) ([]*github.Event, error) {
		c.logger.Debug("Fetching events page", "login", login, "page", page)
		var events []*github.Event
		err := c.call(ctx, c.opts.RESTTimeout, opUserEvents, func(ctx context.Context) error {
			var err error
			events, _, err = c.gh.Activity.ListEventsPerformedByUser(ctx, login, false, &github.ListOptions{
				Page:    page,
				PerPage: c.opts.PageSize,
			})
			return err
		})
		return events, err
	}
	visit := func(events []*github.Event) bool {
		for _, e := range events {
			if e.CreatedAt == nil {
				c.logger.Debug("Skipping event without timestamp", "type", e.GetType())
				continue
			}
			at := e.GetCreatedAt().Time
			if w.IsAfter(at) {
				continue
			}
			if w.IsBefore(at) {
				return false
			}
			activities = append(activities, parseEvent(e))
		}
		return true
	}

	if err := walkPages(ctx, c.opts.PageSize, fetch, visit); err != nil {
		return nil, err
	}
	return activities, nil
}

// parseEvent converts a feed entry into its typed activity. A payload that
// fails to decode leaves the kind-specific fields at their zero values.
func parseEvent(e *github.Event) model.Activity {
	at := e.GetCreatedAt().UTC()
	switch e.GetType() {
	case "PushEvent":
		push := model.PushActivity{At: at}
		if p, ok := payloadOf[*github.PushEvent](e); ok {
			push.Commits = len(p.Commits)
			push.Size = p.GetSize()
		}
		return push
	case "PullRequestEvent":
		pr := model.PullRequestActivity{At: at}
		if p, ok := payloadOf[*github.PullRequestEvent](e); ok {
			pr.Action = p.GetAction()
		}
		return pr
	case "IssuesEvent":
		issue := model.IssueActivity{At: at}
		if p, ok := payloadOf[*github.IssuesEvent](e); ok {
			issue.Action = p.GetAction()
		}
		return issue
	case "WatchEvent":
		return model.WatchActivity{At: at}
	case "PublicEvent":
		return model.PublicActivity{At: at}
	default:
		return model.UnknownActivity{At: at, Type: e.GetType()}
	}
}

func payloadOf[T any](e *github.Event) (T, bool) {
	var zero T
	payload, err := e.ParsePayload()
	if err != nil {
		return zero, false
	}
	v, ok := payload.(T)
	return v, ok
}
