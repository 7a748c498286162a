package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const accountColumns = `id, github_id, login, access_token, created_at, updated_at`

const getAccount = `
SELECT ` + accountColumns + ` FROM accounts
WHERE id = $1
`

func (q *Queries) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := q.db.QueryRow(ctx, getAccount, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.GithubID,
		&i.Login,
		&i.AccessToken,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAccounts = `
SELECT ` + accountColumns + ` FROM accounts
ORDER BY id
`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.GithubID,
			&i.Login,
			&i.AccessToken,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertAccount = `
INSERT INTO accounts (github_id, login, access_token)
VALUES ($1, $2, $3)
ON CONFLICT (github_id) DO UPDATE
SET login = EXCLUDED.login,
    access_token = EXCLUDED.access_token,
    updated_at = NOW()
RETURNING ` + accountColumns

type UpsertAccountParams struct {
	GithubID    int64
	Login       string
	AccessToken string
}

func (q *Queries) UpsertAccount(ctx context.Context, arg UpsertAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, upsertAccount, arg.GithubID, arg.Login, arg.AccessToken)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.GithubID,
		&i.Login,
		&i.AccessToken,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const repoColumns = `id, account_id, repo_id, name, full_name, private, language, html_url, description, created_at, updated_at`

func scanRepo(row interface{ Scan(...interface{}) error }) (GithubRepo, error) {
	var i GithubRepo
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.RepoID,
		&i.Name,
		&i.FullName,
		&i.Private,
		&i.Language,
		&i.HtmlUrl,
		&i.Description,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getRepositoryByRepoID = `
SELECT ` + repoColumns + ` FROM github_repos
WHERE repo_id = $1
`

func (q *Queries) GetRepositoryByRepoID(ctx context.Context, repoID int64) (GithubRepo, error) {
	return scanRepo(q.db.QueryRow(ctx, getRepositoryByRepoID, repoID))
}

const createRepository = `
INSERT INTO github_repos (account_id, repo_id, name, full_name, private, language, html_url, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + repoColumns

type CreateRepositoryParams struct {
	AccountID   int64
	RepoID      int64
	Name        string
	FullName    string
	Private     bool
	Language    pgtype.Text
	HtmlUrl     string
	Description pgtype.Text
}

func (q *Queries) CreateRepository(ctx context.Context, arg CreateRepositoryParams) (GithubRepo, error) {
	row := q.db.QueryRow(ctx, createRepository,
		arg.AccountID,
		arg.RepoID,
		arg.Name,
		arg.FullName,
		arg.Private,
		arg.Language,
		arg.HtmlUrl,
		arg.Description,
	)
	return scanRepo(row)
}

const updateRepository = `
UPDATE github_repos
SET name = $2,
    full_name = $3,
    private = $4,
    language = $5,
    html_url = $6,
    description = $7,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + repoColumns

type UpdateRepositoryParams struct {
	ID          int64
	Name        string
	FullName    string
	Private     bool
	Language    pgtype.Text
	HtmlUrl     string
	Description pgtype.Text
}

func (q *Queries) UpdateRepository(ctx context.Context, arg UpdateRepositoryParams) (GithubRepo, error) {
	row := q.db.QueryRow(ctx, updateRepository,
		arg.ID,
		arg.Name,
		arg.FullName,
		arg.Private,
		arg.Language,
		arg.HtmlUrl,
		arg.Description,
	)
	return scanRepo(row)
}

const listRepositoriesByAccount = `
SELECT ` + repoColumns + ` FROM github_repos
WHERE account_id = $1
ORDER BY full_name
`

func (q *Queries) ListRepositoriesByAccount(ctx context.Context, accountID int64) ([]GithubRepo, error) {
	rows, err := q.db.Query(ctx, listRepositoriesByAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GithubRepo
	for rows.Next() {
		i, err := scanRepo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const statColumns = `id, account_id, date, commit_count, pr_count, issue_count, star_delta, created_at, updated_at`

func scanStat(row interface{ Scan(...interface{}) error }) (GithubDailyStat, error) {
	var i GithubDailyStat
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Date,
		&i.CommitCount,
		&i.PrCount,
		&i.IssueCount,
		&i.StarDelta,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getDailyStat = `
SELECT ` + statColumns + ` FROM github_daily_stats
WHERE account_id = $1 AND date = $2
`

type GetDailyStatParams struct {
	AccountID int64
	Date      pgtype.Date
}

func (q *Queries) GetDailyStat(ctx context.Context, arg GetDailyStatParams) (GithubDailyStat, error) {
	return scanStat(q.db.QueryRow(ctx, getDailyStat, arg.AccountID, arg.Date))
}

const createDailyStat = `
INSERT INTO github_daily_stats (account_id, date, commit_count, pr_count, issue_count, star_delta)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + statColumns

type CreateDailyStatParams struct {
	AccountID   int64
	Date        pgtype.Date
	CommitCount int32
	PrCount     int32
	IssueCount  int32
	StarDelta   int32
}

func (q *Queries) CreateDailyStat(ctx context.Context, arg CreateDailyStatParams) (GithubDailyStat, error) {
	row := q.db.QueryRow(ctx, createDailyStat,
		arg.AccountID,
		arg.Date,
		arg.CommitCount,
		arg.PrCount,
		arg.IssueCount,
		arg.StarDelta,
	)
	return scanStat(row)
}

const updateDailyStat = `
UPDATE github_daily_stats
SET commit_count = $2,
    pr_count = $3,
    issue_count = $4,
    star_delta = $5,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + statColumns

type UpdateDailyStatParams struct {
	ID          int64
	CommitCount int32
	PrCount     int32
	IssueCount  int32
	StarDelta   int32
}

func (q *Queries) UpdateDailyStat(ctx context.Context, arg UpdateDailyStatParams) (GithubDailyStat, error) {
	row := q.db.QueryRow(ctx, updateDailyStat,
		arg.ID,
		arg.CommitCount,
		arg.PrCount,
		arg.IssueCount,
		arg.StarDelta,
	)
	return scanStat(row)
}

const listDailyStats = `
SELECT ` + statColumns + ` FROM github_daily_stats
WHERE account_id = $1 AND date BETWEEN $2 AND $3
ORDER BY date
`

type ListDailyStatsParams struct {
	AccountID int64
	FromDate  pgtype.Date
	ToDate    pgtype.Date
}

func (q *Queries) ListDailyStats(ctx context.Context, arg ListDailyStatsParams) ([]GithubDailyStat, error) {
	rows, err := q.db.Query(ctx, listDailyStats, arg.AccountID, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GithubDailyStat
	for rows.Next() {
		i, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
