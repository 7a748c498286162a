package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github-activity-sync/internal/model"
	"github-activity-sync/internal/syncer"
)

var (
	syncMode     string
	lookbackDays int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync one account from GitHub",
	Long: `Fetch repositories and activity for an account and store its daily counters.

Without --from/--to the window ends today and reaches back --days days, or
the configured lookback for the chosen mode.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	addAccountFlag(syncCmd)
	addRangeFlags(syncCmd)
	syncCmd.Flags().StringVar(&syncMode, "mode", string(model.ModeStandard), "sync mode (standard, deep)")
	syncCmd.Flags().IntVar(&lookbackDays, "days", 0, "lookback in days when --from is not set")
	syncCmd.MarkFlagsMutuallyExclusive("from", "days")
}

func runSync(cmd *cobra.Command, args []string) error {
	req, err := buildSyncRequest(syncMode, startDate, endDate, lookbackDays)
	if err != nil {
		return err
	}

	rt, _, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	summary, err := rt.Syncer.Sync(cmd.Context(), accountID, req)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	writeSummary(cmd.OutOrStdout(), summary)
	return nil
}

// buildSyncRequest turns command line flags into a sync request. Window
// validation itself happens in the syncer.
func buildSyncRequest(mode, from, to string, days int) (syncer.SyncRequest, error) {
	var req syncer.SyncRequest

	m, err := model.ParseSyncMode(mode)
	if err != nil {
		return req, err
	}
	req.Mode = m

	if req.From, err = parseDateFlag(from, "from"); err != nil {
		return req, err
	}
	if req.To, err = parseDateFlag(to, "to"); err != nil {
		return req, err
	}
	if days < 0 {
		return req, fmt.Errorf("invalid --days %d: must not be negative", days)
	}
	if req.From != nil && days > 0 {
		return req, errors.New("--days cannot be combined with --from")
	}
	req.LookbackDays = days
	return req, nil
}

func writeSummary(w io.Writer, s *syncer.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Mode", string(s.Window.Mode)})
	table.Append([]string{"Date Range", s.Window.String()})
	table.Append([]string{"Repositories", fmt.Sprintf("%d", s.Repositories)})
	table.Append([]string{"Days Updated", fmt.Sprintf("%d", s.StatsUpdated)})
	table.Render()
}
