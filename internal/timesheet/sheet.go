package timesheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/hours"
	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/project"
)

// MaxLookbackMonths bounds how far back a timesheet may start.
const MaxLookbackMonths = 3

// ErrStartTooOld is returned when a timesheet starts more than
// MaxLookbackMonths before now.
var ErrStartTooOld = errors.New("timesheet start must not be more than 3 months ago")

var secondsPerHour = decimal.NewFromInt(3600)

// CheckStart rejects a start that lies MaxLookbackMonths or more before now.
func CheckStart(start, now time.Time) error {
	if !now.Before(start.AddDate(0, MaxLookbackMonths, 0)) {
		return fmt.Errorf("%w: %s", ErrStartTooOld, start.Format(time.DateOnly))
	}
	return nil
}

// Cost charges seconds of work at an hourly rate, rounded up to the next
// 0.01.
func Cost(seconds int64, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(seconds).Mul(rate).Div(secondsPerHour).RoundUp(2)
}

// Line is one billable row of a timesheet.
type Line struct {
	Workorder   string          `json:"workorder"`
	ProjectID   string          `json:"project_id"`
	PaymentType string          `json:"payment_type"`
	CostingRate string          `json:"costing_rate"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Seconds     int64           `json:"seconds"`
	Cost        decimal.Decimal `json:"cost"`
	Name        string          `json:"name"`
}

// Hours returns the charged time in hours.
func (l Line) Hours() decimal.Decimal {
	return decimal.NewFromInt(l.Seconds).Div(secondsPerHour)
}

// Title is "<project ID>: <name>", or the bare ID for an unnamed project.
func (l Line) Title() string {
	if l.Name == "" {
		return l.ProjectID
	}
	return l.ProjectID + ": " + l.Name
}

// Sheet is a set of billable lines.
type Sheet struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`

	// Skipped lists project IDs that had hours but no complete workorder.
	Skipped []string `json:"skipped,omitempty"`
}

// Build charges every project in r that has a complete workorder in book.
// Toggl projects sharing a project ID are summed into one line; lines keep
// the report's order. Projects without a project ID are ignored.
func Build(ctx context.Context, r hours.Report, book *Book) Sheet {
	log := logging.FromContext(ctx)

	var order []string
	seconds := make(map[string]int64)
	names := make(map[string]string)
	for _, p := range r.Projects {
		if p.ProjectID == "" {
			continue
		}
		if _, ok := seconds[p.ProjectID]; !ok {
			order = append(order, p.ProjectID)
			names[p.ProjectID] = project.DecomposeProjectName(p.Name).Name
		}
		seconds[p.ProjectID] += p.Seconds
	}

	s := Sheet{Total: decimal.Zero}
	for _, id := range order {
		w, ok := book.ForProject(id)
		if !ok {
			log.Debug(ctx, "no workorder for project", zap.String("project_id", id))
			s.Skipped = append(s.Skipped, id)
			continue
		}
		if !w.IsComplete() {
			log.Warn(ctx, "workorder incomplete",
				zap.String("project_id", id),
				zap.String("workorder", w.ID),
				zap.Strings("missing", w.Missing()))
			s.Skipped = append(s.Skipped, id)
			continue
		}

		rate := decimal.NewFromFloat(*w.HourlyRate)
		line := Line{
			Workorder:   w.ID,
			ProjectID:   id,
			PaymentType: w.PaymentType,
			CostingRate: w.CostingRate,
			HourlyRate:  rate,
			Seconds:     seconds[id],
			Cost:        Cost(seconds[id], rate),
			Name:        names[id],
		}
		s.Lines = append(s.Lines, line)
		s.Total = s.Total.Add(line.Cost)
	}
	return s
}

// WriteTSV writes one line per charged project:
//
//	workorder, project ID, payment type, costing rate, hourly rate,
//	hours, cost, name, "<project ID>: <name>"
func (s Sheet) WriteTSV(w io.Writer) error {
	for _, l := range s.Lines {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Workorder,
			l.ProjectID,
			l.PaymentType,
			l.CostingRate,
			l.HourlyRate.String(),
			l.Hours().StringFixed(2),
			l.Cost.StringFixed(2),
			l.Name,
			l.Title())
		if err != nil {
			return err
		}
	}
	return nil
}
