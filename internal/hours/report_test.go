package hours

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projctl/internal/toggl"
)

func at(day string, hour int) time.Time {
	t, _ := time.Parse(dayLayout, day)
	return t.Add(time.Duration(hour) * time.Hour)
}

func fixtureProjects() []toggl.Project {
	return []toggl.Project{
		{ID: 1, Name: "P2024-CRD-FZLL - Finch beaks"},
		{ID: 2, Name: "P2023-CRD-ABCD"},
		{ID: 3, Name: "P2024-AB1-QWER - Admin (R123)"},
		{ID: 4, Name: "Holiday"},
	}
}

func fixtureEntries() []toggl.TimeEntry {
	return []toggl.TimeEntry{
		{ProjectID: 1, Duration: 3600, Start: at("2024-03-01", 9)},
		{ProjectID: 1, Duration: 1800, Start: at("2024-03-02", 9)},
		{ProjectID: 2, Duration: 900, Start: at("2024-03-02", 14)},
		{ProjectID: 3, Duration: 7200, Start: at("2024-03-01", 13)},
		{ProjectID: 4, Duration: 600, Start: at("2024-03-03", 8)},
		{ProjectID: 0, Duration: 300, Start: at("2024-03-03", 10)},
		{ProjectID: 99, Duration: 60, Start: at("2024-03-03", 11)},
		{ProjectID: 1, Duration: -1709283600, Start: at("2024-03-03", 12)},
	}
}

func TestCollate(t *testing.T) {
	r := Collate(fixtureEntries(), fixtureProjects())

	assert.Equal(t, int64(14460), r.TotalSeconds)
	assert.Equal(t, 1, r.Running)

	require.Len(t, r.Projects, 6)
	assert.Equal(t, ProjectHours{TogglID: 3, Name: "P2024-AB1-QWER - Admin (R123)", ProjectID: "P2024-AB1-QWER", Seconds: 7200}, r.Projects[0])
	assert.Equal(t, ProjectHours{TogglID: 1, Name: "P2024-CRD-FZLL - Finch beaks", ProjectID: "P2024-CRD-FZLL", Seconds: 5400}, r.Projects[1])
	assert.Equal(t, "P2023-CRD-ABCD", r.Projects[2].ProjectID)
	assert.Equal(t, "Holiday", r.Projects[3].Name)
	assert.Empty(t, r.Projects[3].ProjectID)
	assert.Equal(t, noProjectName, r.Projects[4].Name)
	assert.Equal(t, "#99", r.Projects[5].Name)

	require.Len(t, r.Users, 3)
	assert.Equal(t, unassigned, r.Users[0].UserID)
	assert.Equal(t, int64(960), r.Users[0].Seconds)
	assert.Len(t, r.Users[0].Projects, 3)
	assert.Equal(t, "AB1", r.Users[1].UserID)
	assert.Equal(t, int64(7200), r.Users[1].Seconds)
	assert.Equal(t, "CRD", r.Users[2].UserID)
	assert.Equal(t, int64(6300), r.Users[2].Seconds)
	assert.Equal(t, "P2024-CRD-FZLL", r.Users[2].Projects[0].ProjectID)

	assert.Equal(t, []Day{
		{Date: "2024-03-01", Seconds: 10800},
		{Date: "2024-03-02", Seconds: 2700},
		{Date: "2024-03-03", Seconds: 960},
	}, r.Daily)
	assert.Equal(t, []float64{3, 0.75, 960.0 / 3600}, r.DailyHours())
}

func TestCollate_Empty(t *testing.T) {
	r := Collate(nil, nil)
	assert.Zero(t, r.TotalSeconds)
	assert.Empty(t, r.Projects)
	assert.Empty(t, r.Users)
	assert.Zero(t, r.Share(ProjectHours{Seconds: 10}))
}

func TestReport_Share(t *testing.T) {
	r := Collate(fixtureEntries(), fixtureProjects())
	assert.InDelta(t, 7200.0/14460.0, r.Share(r.Projects[0]), 1e-9)
}

func TestReport_Render(t *testing.T) {
	out := Collate(fixtureEntries(), fixtureProjects()).Render()

	assert.Contains(t, out, "PROJECT")
	assert.Contains(t, out, "P2024-CRD-FZLL - Finch beaks")
	assert.Contains(t, out, "1.50h")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "4.02h")
	assert.Contains(t, out, "CRD")
	assert.Contains(t, out, "1 running entries not counted")
}

func TestReport_WriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Collate(fixtureEntries(), fixtureProjects()).WriteTSV(&buf))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 6)
	assert.Equal(t, "P2024-AB1-QWER - Admin (R123)\t2.00", string(lines[0]))
	assert.Equal(t, "P2024-CRD-FZLL - Finch beaks\t1.50", string(lines[1]))
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2024-03-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTime("2024-03-01T10:30:00+02:00", time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)))

	_, err = ParseTime("yesterday", time.UTC)
	assert.Error(t, err)
}
