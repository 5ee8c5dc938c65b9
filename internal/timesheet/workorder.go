package timesheet

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fyrsmithlabs/projctl/internal/config"
	"github.com/fyrsmithlabs/projctl/internal/project"
)

var (
	// ErrInvalidTracType is returned when trac_type is not "<location> <rate>".
	ErrInvalidTracType = errors.New("trac_type must be two words, e.g. \"Internal FEC\"")

	// ErrDuplicateProject is returned when two workorders claim one project.
	ErrDuplicateProject = errors.New("project is listed under more than one workorder")

	// ErrInvalidProjectID is returned for a malformed entry in projects.
	ErrInvalidProjectID = errors.New("invalid project ID")
)

// Workorder is a funding line that tracked hours are charged against.
// TracType is the project location and costing rate joined by a space;
// whichever side is given, the other is filled in on load.
type Workorder struct {
	ID              string   `toml:"id"`
	UserID          string   `toml:"user_id"`
	Funder          string   `toml:"funder"`
	TracType        string   `toml:"trac_type"`
	ProjectLocation string   `toml:"project_location"`
	CostingRate     string   `toml:"costing_rate"`
	PaymentType     string   `toml:"payment_type"`
	HourlyRate      *float64 `toml:"hourly_rate"`
	Projects        []string `toml:"projects"`
}

// SplitTracType splits "Internal FEC" into its location and costing rate.
func SplitTracType(s string) (location, rate string, err error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidTracType, s)
	}
	return fields[0], fields[1], nil
}

func (w *Workorder) normalize() error {
	if w.TracType != "" {
		loc, rate, err := SplitTracType(w.TracType)
		if err != nil {
			return fmt.Errorf("workorder %s: %w", w.ID, err)
		}
		w.ProjectLocation, w.CostingRate = loc, rate
		w.TracType = loc + " " + rate
		return nil
	}
	if w.ProjectLocation != "" && w.CostingRate != "" {
		w.TracType = w.ProjectLocation + " " + w.CostingRate
	}
	return nil
}

// Missing lists the required fields that are unset.
func (w Workorder) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"id", w.ID != ""},
		{"project_location", w.ProjectLocation != ""},
		{"costing_rate", w.CostingRate != ""},
		{"trac_type", w.TracType != ""},
		{"payment_type", w.PaymentType != ""},
		{"hourly_rate", w.HourlyRate != nil},
	} {
		if !f.set {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// IsComplete reports whether the workorder carries everything a timesheet
// line needs.
func (w Workorder) IsComplete() bool { return len(w.Missing()) == 0 }

// Book maps project IDs to the workorder that funds them.
type Book struct {
	Workorders []Workorder `toml:"workorder"`

	byProject map[string]int
}

// ParseBook decodes a TOML workorder book.
func ParseBook(data []byte) (*Book, error) {
	var b Book
	if _, err := toml.Decode(string(data), &b); err != nil {
		return nil, fmt.Errorf("failed to parse workorders: %w", err)
	}

	b.byProject = make(map[string]int)
	for i := range b.Workorders {
		w := &b.Workorders[i]
		if err := w.normalize(); err != nil {
			return nil, err
		}
		for _, id := range w.Projects {
			if !project.CheckProjectID(id) {
				return nil, fmt.Errorf("workorder %s: %w: %q", w.ID, ErrInvalidProjectID, id)
			}
			if j, ok := b.byProject[id]; ok {
				return nil, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateProject, id, b.Workorders[j].ID, w.ID)
			}
			b.byProject[id] = i
		}
	}
	return &b, nil
}

// LoadBook reads a workorder book from path. A leading "~/" is expanded.
func LoadBook(path string) (*Book, error) {
	path, err := config.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workorders: %w", err)
	}
	return ParseBook(data)
}

// ForProject returns the workorder listing projectID.
func (b *Book) ForProject(projectID string) (Workorder, bool) {
	i, ok := b.byProject[projectID]
	if !ok {
		return Workorder{}, false
	}
	return b.Workorders[i], true
}
