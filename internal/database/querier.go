package database

import (
	"context"
)

type Querier interface {
	CreateDailyStat(ctx context.Context, arg CreateDailyStatParams) (GithubDailyStat, error)
	CreateRepository(ctx context.Context, arg CreateRepositoryParams) (GithubRepo, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	GetDailyStat(ctx context.Context, arg GetDailyStatParams) (GithubDailyStat, error)
	GetRepositoryByRepoID(ctx context.Context, repoID int64) (GithubRepo, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	ListDailyStats(ctx context.Context, arg ListDailyStatsParams) ([]GithubDailyStat, error)
	ListRepositoriesByAccount(ctx context.Context, accountID int64) ([]GithubRepo, error)
	UpdateDailyStat(ctx context.Context, arg UpdateDailyStatParams) (GithubDailyStat, error)
	UpdateRepository(ctx context.Context, arg UpdateRepositoryParams) (GithubRepo, error)
	UpsertAccount(ctx context.Context, arg UpsertAccountParams) (Account, error)
}

var _ Querier = (*Queries)(nil)
