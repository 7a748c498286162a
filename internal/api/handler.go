// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	"github-activity-sync/internal/database"
	custom_errors "github-activity-sync/internal/errors"
	"github-activity-sync/internal/metrics"
	"github-activity-sync/internal/model"
	"github-activity-sync/internal/syncer"
)

// SyncRunner runs one sync for an account.
type SyncRunner interface {
	Sync(ctx context.Context, accountID int64, req syncer.SyncRequest) (*syncer.Summary, error)
}

// Options tunes the read endpoints.
type Options struct {
	StatsQueryDays int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler is the container for API dependencies.
type Handler struct {
	db     database.Querier
	runner SyncRunner
	logger *slog.Logger
	opts   Options
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, runner SyncRunner, m *metrics.Metrics, logger *slog.Logger, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StatsQueryDays <= 0 {
		opts.StatsQueryDays = 30
	}
	h := &Handler{
		db:     db,
		runner: runner,
		logger: logger,
		opts:   opts,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)

	r.Get("/health", h.healthCheck)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/v1/accounts/{id}", func(r chi.Router) {
		// Syncs run until the upstream walk finishes; only reads are bounded.
		r.Post("/sync", h.syncAccount)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/stats/daily", h.getDailyStats)
			r.Get("/repos", h.getRepositories)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type syncResponse struct {
	Message      string `json:"message"`
	ReposCount   int    `json:"repos_count"`
	StatsUpdated int    `json:"stats_updated"`
	DateRange    string `json:"date_range"`
	Mode         string `json:"mode"`
}

// syncAccount runs a sync and reports its summary.
// POST /v1/accounts/{id}/sync?from=YYYY-MM-DD&to=YYYY-MM-DD&mode=standard|deep&days=N
// days and from are mutually exclusive; sending both is a 400.
func (h *Handler) syncAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	req, err := parseSyncRequest(r)
	if err != nil {
		h.respondWithSyncError(w, err)
		return
	}

	summary, err := h.runner.Sync(r.Context(), accountID, req)
	if err != nil {
		h.respondWithSyncError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, syncResponse{
		Message:      "GitHub data synced successfully",
		ReposCount:   summary.Repositories,
		StatsUpdated: summary.StatsUpdated,
		DateRange:    summary.Window.String(),
		Mode:         string(summary.Window.Mode),
	})
}

func parseSyncRequest(r *http.Request) (syncer.SyncRequest, error) {
	q := r.URL.Query()
	var req syncer.SyncRequest

	mode, err := model.ParseSyncMode(q.Get("mode"))
	if err != nil {
		return req, &custom_errors.ValidationError{Field: "mode", Message: "must be standard or deep"}
	}
	req.Mode = mode

	if req.From, err = parseDateParam(q.Get("from"), "from"); err != nil {
		return req, err
	}
	if req.To, err = parseDateParam(q.Get("to"), "to"); err != nil {
		return req, err
	}
	if days := q.Get("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return req, &custom_errors.ValidationError{Field: "days", Message: "must be a positive integer"}
		}
		if req.From != nil {
			return req, &custom_errors.ValidationError{Field: "days", Message: "cannot be combined with from"}
		}
		req.LookbackDays = n
	}
	return req, nil
}

func parseDateParam(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, &custom_errors.ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return &d, nil
}

func (h *Handler) respondWithSyncError(w http.ResponseWriter, err error) {
	var validation *custom_errors.ValidationError
	switch {
	case errors.As(err, &validation):
		respondWithError(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, custom_errors.ErrAccountNotFound):
		respondWithError(w, http.StatusNotFound, "Account not found")
	case errors.Is(err, custom_errors.ErrSyncInProgress):
		respondWithError(w, http.StatusConflict, "A sync for this account is already running")
	default:
		h.logger.Error("Sync request failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "GitHub sync failed")
	}
}

type dailyStatResponse struct {
	Date        string    `json:"date"`
	CommitCount int32     `json:"commit_count"`
	PRCount     int32     `json:"pr_count"`
	IssueCount  int32     `json:"issue_count"`
	StarDelta   int32     `json:"star_delta"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type dailyStatsResponse struct {
	Data  []dailyStatResponse `json:"data"`
	Total int                 `json:"total"`
}

// getDailyStats returns the stored counters of an account, oldest day first.
// GET /v1/accounts/{id}/stats/daily?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) getDailyStats(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	from, to, err := h.statsRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.accountExists(w, r, accountID) {
		return
	}

	rows, err := h.db.ListDailyStats(r.Context(), database.ListDailyStatsParams{
		AccountID: accountID,
		FromDate:  database.Date(from),
		ToDate:    database.Date(to),
	})
	if err != nil {
		h.logger.Error("Failed to list daily stats", "account_id", accountID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := dailyStatsResponse{Data: make([]dailyStatResponse, 0, len(rows)), Total: len(rows)}
	for _, row := range rows {
		resp.Data = append(resp.Data, dailyStatResponse{
			Date:        model.FormatDate(row.Date.Time),
			CommitCount: row.CommitCount,
			PRCount:     row.PrCount,
			IssueCount:  row.IssueCount,
			StarDelta:   row.StarDelta,
			UpdatedAt:   row.UpdatedAt.Time,
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) statsRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := parseDateParam(q.Get("from"), "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateParam(q.Get("to"), "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end := model.DateOf(h.opts.Now())
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -h.opts.StatsQueryDays)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, &custom_errors.ValidationError{Field: "from", Message: "start date must not be after end date"}
	}
	return start, end, nil
}

type repositoryResponse struct {
	RepoID      int64   `json:"repo_id"`
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Private     bool    `json:"private"`
	Language    *string `json:"language"`
	HTMLURL     string  `json:"html_url"`
	Description *string `json:"description"`
}

// getRepositories lists the repositories stored for an account.
// GET /v1/accounts/{id}/repos
func (h *Handler) getRepositories(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	if !h.accountExists(w, r, accountID) {
		return
	}

	repos, err := h.db.ListRepositoriesByAccount(r.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to list repositories", "account_id", accountID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := make([]repositoryResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, repositoryResponse{
			RepoID:      repo.RepoID,
			Name:        repo.Name,
			FullName:    repo.FullName,
			Private:     repo.Private,
			Language:    database.TextPtr(repo.Language),
			HTMLURL:     repo.HtmlUrl,
			Description: database.TextPtr(repo.Description),
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid account id")
		return 0, false
	}
	return id, true
}

func (h *Handler) accountExists(w http.ResponseWriter, r *http.Request, accountID int64) bool {
	_, err := h.db.GetAccount(r.Context(), accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		respondWithError(w, http.StatusNotFound, "Account not found")
		return false
	} else if err != nil {
		h.logger.Error("Failed to get account", "account_id", accountID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}
