package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/hours"
	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/services"
	"github.com/fyrsmithlabs/projctl/internal/timesheet"
)

var (
	timesheetSince      string
	timesheetUntil      string
	timesheetWorkorders string
	timesheetOutput     string
	timesheetJSON       bool
)

func init() {
	hoursCmd.AddCommand(timesheetCmd)

	f := timesheetCmd.Flags()
	f.StringVarP(&timesheetSince, "since", "s", "", "Start of the window, RFC3339 or YYYY-MM-DD (required)")
	f.StringVarP(&timesheetUntil, "until", "e", "", "End of the window, RFC3339 or YYYY-MM-DD (default now)")
	f.StringVar(&timesheetWorkorders, "workorders", "", "Workorder book (default timesheet.workorders)")
	f.StringVarP(&timesheetOutput, "output", "o", "", "Write the TSV to this file instead of stdout")
	f.BoolVar(&timesheetJSON, "json", false, "Output the sheet as JSON")
	_ = timesheetCmd.MarkFlagRequired("since")
	timesheetCmd.MarkFlagsMutuallyExclusive("output", "json")
}

var timesheetCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Cost tracked hours against project workorders",
	Long: `Charge the hours tracked in Toggl Track against the workorder that funds
each project. One TSV line is written per project:

  workorder  project  payment type  costing rate  hourly rate  hours  cost  name  title

Costs are rounded up to the next 0.01. Projects without a complete workorder
are skipped with a warning. The window may not start more than 3 months ago.

Examples:
  # Timesheet for last month
  projctl hours timesheet --since 2024-05-01 --until 2024-06-01

  # Use another workorder book and write a file
  projctl hours timesheet -s 2024-05-01 --workorders ./wo.toml -o may.tsv`,
	Args: cobra.NoArgs,
	RunE: runTimesheet,
}

func runTimesheet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	window, err := parseWindow(timesheetSince, timesheetUntil, time.Local)
	if err != nil {
		return err
	}
	if err := timesheet.CheckStart(window.Start, time.Now()); err != nil {
		return err
	}

	path := timesheetWorkorders
	if path == "" {
		path = appConfig.Timesheet.Workorders
	}
	book, err := timesheet.LoadBook(path)
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

	report, err := hours.Fetch(ctx, client, window, time.Now())
	if err != nil {
		return err
	}
	sheet := timesheet.Build(ctx, report, book)

	if timesheetJSON {
		return outputJSON(cmd.OutOrStdout(), sheet)
	}

	if timesheetOutput == "" {
		if err := sheet.WriteTSV(cmd.OutOrStdout()); err != nil {
			return err
		}
	} else {
		f, err := os.Create(timesheetOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", timesheetOutput, err)
		}
		if err := sheet.WriteTSV(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", timesheetOutput, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	log.Info(ctx, "timesheet written",
		zap.Int("lines", len(sheet.Lines)),
		zap.Int("skipped", len(sheet.Skipped)),
		zap.String("total", sheet.Total.StringFixed(2)))
	return nil
}
