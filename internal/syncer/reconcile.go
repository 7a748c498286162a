package syncer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"github-activity-sync/internal/database"
	"github-activity-sync/internal/model"
)

// reconcileRepositories upserts every fetched repository for the account.
func (s *Syncer) reconcileRepositories(ctx context.Context, q database.Querier, accountID int64, repos []model.Repository) error {
	for _, repo := range repos {
		if _, err := s.upsertRepository(ctx, q, accountID, repo); err != nil {
			return fmt.Errorf("upsert repository %s: %w", repo.FullName, err)
		}
	}
	return nil
}

// upsertRepository creates or updates a repository keyed by its GitHub id.
func (s *Syncer) upsertRepository(ctx context.Context, q database.Querier, accountID int64, repo model.Repository) (database.GithubRepo, error) {
	existing, err := q.GetRepositoryByRepoID(ctx, repo.GithubRepoID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Debug("Repository not found in DB, creating new entry", "repo", repo.FullName)
		return q.CreateRepository(ctx, database.CreateRepositoryParams{
			AccountID:   accountID,
			RepoID:      repo.GithubRepoID,
			Name:        repo.Name,
			FullName:    repo.FullName,
			Private:     repo.Private,
			Language:    database.Text(repo.Language),
			HtmlUrl:     repo.URL,
			Description: database.Text(repo.Description),
		})
	} else if err != nil {
		return database.GithubRepo{}, err
	}

	s.logger.Debug("Repository found in DB, updating metadata", "repo", repo.FullName)
	return q.UpdateRepository(ctx, database.UpdateRepositoryParams{
		ID:          existing.ID,
		Name:        repo.Name,
		FullName:    repo.FullName,
		Private:     repo.Private,
		Language:    database.Text(repo.Language),
		HtmlUrl:     repo.URL,
		Description: database.Text(repo.Description),
	})
}

// reconcileDailyStats writes every aggregated day, oldest first, and returns
// the number of rows written.
func (s *Syncer) reconcileDailyStats(ctx context.Context, q database.Querier, accountID int64, stats model.DailyStats) (int, error) {
	days := make([]time.Time, 0, len(stats))
	for day := range stats {
		days = append(days, day)
	}
	slices.SortFunc(days, time.Time.Compare)

	for _, day := range days {
		if _, err := s.upsertDailyStat(ctx, q, accountID, day, stats[day]); err != nil {
			return 0, fmt.Errorf("upsert daily stat %s: %w", model.FormatDate(day), err)
		}
	}
	return len(days), nil
}

// upsertDailyStat replaces the counters stored for (account, day).
func (s *Syncer) upsertDailyStat(ctx context.Context, q database.Querier, accountID int64, day time.Time, c *model.DailyCounts) (database.GithubDailyStat, error) {
	existing, err := q.GetDailyStat(ctx, database.GetDailyStatParams{
		AccountID: accountID,
		Date:      database.Date(day),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return q.CreateDailyStat(ctx, database.CreateDailyStatParams{
			AccountID:   accountID,
			Date:        database.Date(day),
			CommitCount: int32(c.CommitCount),
			PrCount:     int32(c.PRCount),
			IssueCount:  int32(c.IssueCount),
			StarDelta:   int32(c.StarDelta),
		})
	} else if err != nil {
		return database.GithubDailyStat{}, err
	}

	return q.UpdateDailyStat(ctx, database.UpdateDailyStatParams{
		ID:          existing.ID,
		CommitCount: int32(c.CommitCount),
		PrCount:     int32(c.PRCount),
		IssueCount:  int32(c.IssueCount),
		StarDelta:   int32(c.StarDelta),
	})
}
