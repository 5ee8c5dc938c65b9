package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/hours"
	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/services"
)

var (
	hoursSince    string
	hoursUntil    string
	hoursWatch    bool
	hoursInterval time.Duration
	hoursOutput   string
	hoursJSON     bool
)

// ErrTogglNotConfigured is returned when hours is run without a Toggl token.
var ErrTogglNotConfigured = errors.New("toggl is not configured; set toggl.api_token or PROJCTL_TOGGL_API_TOKEN")

func init() {
	rootCmd.AddCommand(hoursCmd)

	f := hoursCmd.Flags()
	f.StringVarP(&hoursSince, "since", "s", "", "Start of the window, RFC3339 or YYYY-MM-DD (required)")
	f.StringVarP(&hoursUntil, "until", "e", "", "End of the window, RFC3339 or YYYY-MM-DD (default now)")
	f.BoolVarP(&hoursWatch, "watch", "w", false, "Show a live dashboard")
	f.DurationVar(&hoursInterval, "interval", 5*time.Minute, "Dashboard refresh interval")
	f.StringVarP(&hoursOutput, "output", "o", "", "Write <project>\\t<hours> TSV to this file")
	f.BoolVar(&hoursJSON, "json", false, "Output the report as JSON")
	_ = hoursCmd.MarkFlagRequired("since")
	hoursCmd.MarkFlagsMutuallyExclusive("watch", "output", "json")
}

var hoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Report hours tracked in Toggl per project and user",
	Long: `Report the hours tracked in Toggl Track, grouped by project and by the
user ID embedded in each project ID. Running timers are not counted.

Examples:
  # Hours since the start of March
  projctl hours --since 2024-03-01

  # Write a TSV for a spreadsheet
  projctl hours --since 2024-03-01 --until 2024-04-01 -o march.tsv

  # Live dashboard, refreshed every minute
  projctl hours --since 2024-03-01 --watch --interval 1m`,
	Args: cobra.NoArgs,
	RunE: runHours,
}

func runHours(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	window, err := parseWindow(hoursSince, hoursUntil, time.Local)
	if err != nil {
		return err
	}

	svc, err := services.FromConfig(ctx, appConfig)
	if err != nil {
		return err
	}
	client := svc.Toggl()
	if client == nil {
		return ErrTogglNotConfigured
	}

	if hoursWatch {
		if hoursInterval < time.Second {
			return fmt.Errorf("--interval must be at least 1s, got %v", hoursInterval)
		}
		m := hours.NewModel(ctx, client, window, hoursInterval)
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	}

	report, err := hours.Fetch(ctx, client, window, time.Now())
	if err != nil {
		return err
	}

	switch {
	case hoursOutput != "":
		f, err := os.Create(hoursOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", hoursOutput, err)
		}
		if err := report.WriteTSV(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", hoursOutput, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		logging.FromContext(ctx).Info(ctx, "hours written",
			zap.String("path", hoursOutput),
			zap.Int("projects", len(report.Projects)))
		return nil
	case hoursJSON:
		return outputJSON(cmd.OutOrStdout(), report)
	default:
		printf(cmd, "%s", report.Render())
		return nil
	}
}

func parseWindow(since, until string, loc *time.Location) (hours.Window, error) {
	var w hours.Window
	start, err := hours.ParseTime(since, loc)
	if err != nil {
		return w, fmt.Errorf("--since: %w", err)
	}
	w.Start = start
	if until != "" {
		end, err := hours.ParseTime(until, loc)
		if err != nil {
			return w, fmt.Errorf("--until: %w", err)
		}
		w.End = end
	}
	return w, nil
}
