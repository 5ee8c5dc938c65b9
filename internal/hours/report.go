package hours

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fyrsmithlabs/projctl/internal/project"
	"github.com/fyrsmithlabs/projctl/internal/toggl"
)

const (
	noProjectName = "(no project)"
	unassigned    = "(unassigned)"
	dayLayout     = "2006-01-02"
)

// ProjectHours is the tracked time for one Toggl project.
type ProjectHours struct {
	TogglID   int64  `json:"toggl_id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id,omitempty"`
	Seconds   int64  `json:"seconds"`
}

// Hours returns the tracked time in hours.
func (p ProjectHours) Hours() float64 { return float64(p.Seconds) / 3600 }

// UserHours sums every project that carries the user's ID.
type UserHours struct {
	UserID   string         `json:"user_id"`
	Seconds  int64          `json:"seconds"`
	Projects []ProjectHours `json:"projects"`
}

// Hours returns the tracked time in hours.
func (u UserHours) Hours() float64 { return float64(u.Seconds) / 3600 }

// Day is the tracked time on one calendar day.
type Day struct {
	Date    string `json:"date"`
	Seconds int64  `json:"seconds"`
}

// Report is the collated result of a set of time entries.
type Report struct {
	Projects     []ProjectHours `json:"projects"`
	Users        []UserHours    `json:"users"`
	Daily        []Day          `json:"daily"`
	TotalSeconds int64          `json:"total_seconds"`

	// Running counts entries skipped because their timer was still going.
	Running int `json:"running"`
}

// Collate sums finished entries per Toggl project, attaches the project ID
// found in each project's name and groups the totals by user ID.
// Projects are ordered by descending time, users and days ascending.
func Collate(entries []toggl.TimeEntry, projects []toggl.Project) Report {
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	var r Report
	perProject := make(map[int64]int64)
	perDay := make(map[string]int64)
	for _, e := range entries {
		if e.Running() {
			r.Running++
			continue
		}
		perProject[e.ProjectID] += e.Duration
		perDay[e.Start.Format(dayLayout)] += e.Duration
		r.TotalSeconds += e.Duration
	}

	perUser := make(map[string]*UserHours)
	for id, secs := range perProject {
		ph := ProjectHours{TogglID: id, Seconds: secs, Name: projectName(id, names)}
		if ids := project.FindProjectIDs([]string{ph.Name}); len(ids) > 0 {
			ph.ProjectID = ids[0]
		}
		r.Projects = append(r.Projects, ph)

		user := unassigned
		if parsed, err := project.ParseProjectID(ph.ProjectID); err == nil {
			user = parsed.UserID()
		}
		u, ok := perUser[user]
		if !ok {
			u = &UserHours{UserID: user}
			perUser[user] = u
		}
		u.Seconds += secs
		u.Projects = append(u.Projects, ph)
	}

	sortProjects(r.Projects)
	for _, u := range perUser {
		sortProjects(u.Projects)
		r.Users = append(r.Users, *u)
	}
	sort.Slice(r.Users, func(i, j int) bool { return r.Users[i].UserID < r.Users[j].UserID })

	for day, secs := range perDay {
		r.Daily = append(r.Daily, Day{Date: day, Seconds: secs})
	}
	sort.Slice(r.Daily, func(i, j int) bool { return r.Daily[i].Date < r.Daily[j].Date })

	return r
}

func projectName(id int64, names map[int64]string) string {
	if id == 0 {
		return noProjectName
	}
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func sortProjects(ps []ProjectHours) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Seconds != ps[j].Seconds {
			return ps[i].Seconds > ps[j].Seconds
		}
		return ps[i].Name < ps[j].Name
	})
}

// DailyHours returns the per-day totals in hours, oldest first.
func (r Report) DailyHours() []float64 {
	out := make([]float64, len(r.Daily))
	for i, d := range r.Daily {
		out[i] = float64(d.Seconds) / 3600
	}
	return out
}

// Share returns the fraction of the total spent on p, between 0 and 1.
func (r Report) Share(p ProjectHours) float64 {
	if r.TotalSeconds <= 0 {
		return 0
	}
	return float64(p.Seconds) / float64(r.TotalSeconds)
}

// Render formats the report as a plain text table.
func (r Report) Render() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "PROJECT\tHOURS\tSHARE")
	for _, p := range r.Projects {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, FormatHours(p.Seconds), FormatPercentage(r.Share(p)))
	}
	fmt.Fprintf(w, "TOTAL\t%s\t\n", FormatHours(r.TotalSeconds))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "USER\tHOURS\tPROJECTS")
	for _, u := range r.Users {
		fmt.Fprintf(w, "%s\t%s\t%d\n", u.UserID, FormatHours(u.Seconds), len(u.Projects))
	}
	w.Flush()

	if r.Running > 0 {
		fmt.Fprintf(&b, "\n%d running entries not counted\n", r.Running)
	}
	return b.String()
}

// WriteTSV writes one "<project name>\t<hours>" line per project.
func (r Report) WriteTSV(w io.Writer) error {
	for _, p := range r.Projects {
		if _, err := fmt.Fprintf(w, "%s\t%.2f\n", p.Name, p.Hours()); err != nil {
			return err
		}
	}
	return nil
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseTime accepts RFC3339 or a YYYY-MM-DD date in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
