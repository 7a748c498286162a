package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID          int64
	GithubID    int64
	Login       string
	AccessToken string
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type GithubRepo struct {
	ID          int64
	AccountID   int64
	RepoID      int64
	Name        string
	FullName    string
	Private     bool
	Language    pgtype.Text
	HtmlUrl     string
	Description pgtype.Text
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type GithubDailyStat struct {
	ID          int64
	AccountID   int64
	Date        pgtype.Date
	CommitCount int32
	PrCount     int32
	IssueCount  int32
	StarDelta   int32
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}
