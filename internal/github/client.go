// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	custom_errors "github-activity-sync/internal/errors"
	"github-activity-sync/internal/metrics"
	"github-activity-sync/internal/model"
)

// Endpoint labels used for errors and metrics.
const (
	opUser          = "user"
	opUserRepos     = "user_repos"
	opUserEvents    = "user_events"
	opSearchCommits = "search_commits"
	opSearchIssues  = "search_issues"
	opStargazers    = "stargazers"
)

// Options configures endpoints, page size and per-request timeouts.
type Options struct {
	BaseURL        string
	GraphQLURL     string
	PageSize       int
	RESTTimeout    time.Duration
	SearchTimeout  time.Duration
	GraphQLTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	if o.RESTTimeout <= 0 {
		o.RESTTimeout = 10 * time.Second
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = 15 * time.Second
	}
	if o.GraphQLTimeout <= 0 {
		o.GraphQLTimeout = 20 * time.Second
	}
	return o
}

// Client is a wrapper around the go-github REST client and the githubv4
// GraphQL client, both authenticated with one account's token.
type Client struct {
	gh      *github.Client
	gql     *githubv4.Client
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
func NewClient(token string, opts Options, logger *slog.Logger, m *metrics.Metrics) (*Client, error) {
	opts = opts.withDefaults()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	gh := github.NewClient(tc)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base url: %w", err)
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		gh.BaseURL = baseURL
	}

	gql := githubv4.NewClient(tc)
	if opts.GraphQLURL != "" {
		gql = githubv4.NewEnterpriseClient(opts.GraphQLURL, tc)
	}

	return &Client{
		gh:      gh,
		gql:     gql,
		opts:    opts,
		logger:  logger,
		metrics: m,
	}, nil
}

// call runs one upstream request under its own timeout and converts any
// failure into an UpstreamError.
func (c *Client) call(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(ctx)
	c.metrics.ObserveUpstream(op, err)
	if err != nil {
		return &custom_errors.UpstreamError{Op: op, Err: err}
	}
	return nil
}

// CurrentUser resolves the identity behind the token.
func (c *Client) CurrentUser(ctx context.Context) (*model.Account, error) {
	var user *github.User
	err := c.call(ctx, c.opts.RESTTimeout, opUser, func(ctx context.Context) error {
		var err error
		user, _, err = c.gh.Users.Get(ctx, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &model.Account{GithubID: user.GetID(), Login: user.GetLogin()}, nil
}

// CurrentLogin returns the login of the authenticated user.
func (c *Client) CurrentLogin(ctx context.Context) (string, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.Login, nil
}

// ListRepositories fetches every repository visible to the authenticated user,
// most recently updated first.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	repos, err := collectPages(ctx, c.opts.PageSize, func(ctx context.Context, page int) ([]*github.Repository, error) {
		c.logger.Debug("Fetching repositories page", "page", page)
		opts := &github.RepositoryListByAuthenticatedUserOptions{
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: github.ListOptions{Page: page, PerPage: c.opts.PageSize},
		}
		var repos []*github.Repository
		err := c.call(ctx, c.opts.RESTTimeout, opUserRepos, func(ctx context.Context) error {
			var err error
			repos, _, err = c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
			return err
		})
		return repos, err
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, toInternalRepository(r))
	}
	return out, nil
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository) model.Repository {
	return model.Repository{
		GithubRepoID: r.GetID(),
		Name:         r.GetName(),
		FullName:     r.GetFullName(),
		Private:      r.GetPrivate(),
		Language:     r.Language,
		URL:          r.GetHTMLURL(),
		Description:  r.Description,
	}
}

// splitFullName splits "owner/name".
func splitFullName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", &custom_errors.ErrInvalidRepoFormat{Repo: fullName}
	}
	return owner, name, nil
}
