package github

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"

	"github-activity-sync/internal/model"
)

type stargazerQuery struct {
	Repository struct {
		Stargazers struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Edges []struct {
				StarredAt githubv4.DateTime
			}
		} `graphql:"stargazers(first: $first, after: $after, orderBy: $orderBy)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// StarTimes returns the time of every star received by the given repositories
// inside the window. Stargazers are read oldest first, so a repository's scan
// ends at the first star past the window end. Repositories whose full name is
// not "owner/name" are skipped.
func (c *Client) StarTimes(ctx context.Context, repos []model.Repository, w model.SyncWindow) ([]time.Time, error) {
	var times []time.Time
	for _, repo := range repos {
		owner, name, err := splitFullName(repo.FullName)
		if err != nil {
			c.logger.Warn("Skipping repository for star history", "repo", repo.FullName, "error", err)
			continue
		}

		var after *githubv4.String
		for {
			var q stargazerQuery
			vars := map[string]interface{}{
				"owner": githubv4.String(owner),
				"name":  githubv4.String(name),
				"first": githubv4.Int(c.opts.PageSize),
				"after": after,
				"orderBy": githubv4.StarOrder{
					Field:     githubv4.StarOrderFieldStarredAt,
					Direction: githubv4.OrderDirectionAsc,
				},
			}
			err := c.call(ctx, c.opts.GraphQLTimeout, opStargazers, func(ctx context.Context) error {
				return c.gql.Query(ctx, &q, vars)
			})
			if err != nil {
				return nil, err
			}

			conn := q.Repository.Stargazers
			pastWindow := false
			for _, edge := range conn.Edges {
				at := edge.StarredAt.Time.UTC()
				if w.IsBefore(at) {
					continue
				}
				if w.IsAfter(at) {
					pastWindow = true
					break
				}
				times = append(times, at)
			}
			if pastWindow || !conn.PageInfo.HasNextPage {
				break
			}
			cursor := conn.PageInfo.EndCursor
			after = &cursor
		}
	}
	return times, nil
}
