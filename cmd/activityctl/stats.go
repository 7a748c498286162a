package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github-activity-sync/internal/database"
	"github-activity-sync/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored daily counters",
	Long:  `Display the daily commit, pull request, issue and star counters stored for an account.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Show stored repositories",
	Args:  cobra.NoArgs,
	RunE:  runRepos,
}

func init() {
	addAccountFlag(statsCmd)
	addRangeFlags(statsCmd)
	statsCmd.Flags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	addAccountFlag(reposCmd)
}

type statRow struct {
	Date        string `json:"date"`
	CommitCount int32  `json:"commit_count"`
	PRCount     int32  `json:"pr_count"`
	IssueCount  int32  `json:"issue_count"`
	StarDelta   int32  `json:"star_delta"`
}

func runStats(cmd *cobra.Command, args []string) error {
	rt, cfg, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	start, end, err := statsRange(startDate, endDate, cfg.StatsQueryDays, time.Now())
	if err != nil {
		return err
	}

	rows, err := rt.Store.Queries().ListDailyStats(cmd.Context(), database.ListDailyStatsParams{
		AccountID: accountID,
		FromDate:  database.Date(start),
		ToDate:    database.Date(end),
	})
	if err != nil {
		return fmt.Errorf("failed to list daily stats: %w", err)
	}

	stats := toStatRows(rows)
	if outputJSON {
		return writeStatsJSON(cmd.OutOrStdout(), stats)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nDaily Stats: account %d\n", accountID)
	fmt.Fprintf(cmd.OutOrStdout(), "Time Range: %s to %s\n\n", model.FormatDate(start), model.FormatDate(end))
	writeStatsTable(cmd.OutOrStdout(), stats)
	return nil
}

func runRepos(cmd *cobra.Command, args []string) error {
	rt, _, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	repos, err := rt.Store.Queries().ListRepositoriesByAccount(cmd.Context(), accountID)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}
	writeReposTable(cmd.OutOrStdout(), repos)
	return nil
}

// statsRange resolves the --from/--to flags. Without them the range covers
// the given number of days ending today.
func statsRange(from, to string, days int, now time.Time) (time.Time, time.Time, error) {
	end := model.DateOf(now)
	if p, err := parseDateFlag(to, "to"); err != nil {
		return time.Time{}, time.Time{}, err
	} else if p != nil {
		end = *p
	}

	start := end.AddDate(0, 0, -days)
	if p, err := parseDateFlag(from, "from"); err != nil {
		return time.Time{}, time.Time{}, err
	} else if p != nil {
		start = *p
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s", model.FormatDate(start), model.FormatDate(end))
	}
	return start, end, nil
}

func parseDateFlag(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return &d, nil
}

func toStatRows(rows []database.GithubDailyStat) []statRow {
	out := make([]statRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, statRow{
			Date:        model.FormatDate(r.Date.Time),
			CommitCount: r.CommitCount,
			PRCount:     r.PrCount,
			IssueCount:  r.IssueCount,
			StarDelta:   r.StarDelta,
		})
	}
	return out
}

func writeStatsJSON(w io.Writer, rows []statRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeStatsTable(w io.Writer, rows []statRow) {
	var commits, prs, issues, stars int32

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Commits", "PRs", "Issues", "Stars"})
	for _, r := range rows {
		table.Append([]string{
			r.Date,
			fmt.Sprintf("%d", r.CommitCount),
			fmt.Sprintf("%d", r.PRCount),
			fmt.Sprintf("%d", r.IssueCount),
			fmt.Sprintf("%d", r.StarDelta),
		})
		commits += r.CommitCount
		prs += r.PRCount
		issues += r.IssueCount
		stars += r.StarDelta
	}
	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d", commits),
		fmt.Sprintf("%d", prs),
		fmt.Sprintf("%d", issues),
		fmt.Sprintf("%d", stars),
	})
	table.Render()
}

func writeReposTable(w io.Writer, repos []database.GithubRepo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Repository", "Language", "Private", "URL"})
	for _, r := range repos {
		language := "-"
		if r.Language.Valid {
			language = r.Language.String
		}
		table.Append([]string{r.FullName, language, fmt.Sprintf("%t", r.Private), r.HtmlUrl})
	}
	table.Render()
}
