package hours

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/toggl"
)

// ErrEmptyWindow is returned when a window ends before it starts.
var ErrEmptyWindow = errors.New("time window ends before it starts")

// Source loads time entries and the projects they refer to.
// *toggl.Client satisfies it.
type Source interface {
	TimeEntries(ctx context.Context, start, end time.Time) ([]toggl.TimeEntry, error)
	MeProjects(ctx context.Context) ([]toggl.Project, error)
}

// Bounds returns the concrete range for w. A zero End means now.
func (w Window) Bounds(now time.Time) (time.Time, time.Time, error) {
	end := w.End
	if end.IsZero() {
		end = now
	}
	if !end.After(w.Start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s to %s", ErrEmptyWindow,
			w.Start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return w.Start, end, nil
}

// Fetch loads entries for w from src and collates them.
func Fetch(ctx context.Context, src Source, w Window, now time.Time) (Report, error) {
	start, end, err := w.Bounds(now)
	if err != nil {
		return Report{}, err
	}

	entries, err := src.TimeEntries(ctx, start, end)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load time entries: %w", err)
	}
	projects, err := src.MeProjects(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load projects: %w", err)
	}

	r := Collate(entries, projects)
	logging.FromContext(ctx).Debug(ctx, "hours collated",
		zap.Int("entries", len(entries)),
		zap.Int("projects", len(r.Projects)),
		zap.Int64("total_seconds", r.TotalSeconds))
	return r, nil
}
