package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projctl/internal/hours"
)

func newTogglHoursServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/time_entries":
			if r.URL.Query().Get("start_date") == "" || r.URL.Query().Get("end_date") == "" {
				http.Error(w, "missing dates", http.StatusBadRequest)
				return
			}
			io.WriteString(w, `[
				{"id": 1, "project_id": 1, "duration": 5400, "start": "2024-03-01T09:00:00Z"},
				{"id": 2, "project_id": 2, "duration": 1800, "start": "2024-03-02T09:00:00Z"},
				{"id": 3, "project_id": 1, "duration": -1709370000, "start": "2024-03-02T10:00:00Z"}
			]`)
		case "/me/projects":
			io.WriteString(w, `[
				{"id": 1, "name": "P2024-CRD-FZLL - Finch beaks"},
				{"id": 2, "name": "P2024-AB1-QWER"}
			]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func hoursEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := newTogglHoursServer(t)
	env := newTestEnv(t)
	env.writeConfig(t, "toggl:\n  api_token: tg\n  base_url: "+srv.URL+"\nhttp:\n  rate_limit: 1000\n  burst: 10\n")
	return env
}

func TestHours_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "hours", "--since", "2024-03-01")
	assert.ErrorIs(t, err, ErrTogglNotConfigured)
}

func TestHours_RequiresSince(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "hours")
	assert.Error(t, err)

	_, err = env.run(t, "", "hours", "--since", "last tuesday")
	assert.Error(t, err)
}

func TestHours_Render(t *testing.T) {
	env := hoursEnv(t)

	out, err := env.run(t, "", "hours", "--since", "2024-03-01", "--until", "2024-04-01")
	require.NoError(t, err)
	assert.Contains(t, out, "P2024-CRD-FZLL - Finch beaks")
	assert.Contains(t, out, "1.50h")
	assert.Contains(t, out, "2.00h")
	assert.Contains(t, out, "1 running entries not counted")
}

func TestHours_JSON(t *testing.T) {
	env := hoursEnv(t)

	out, err := env.run(t, "", "hours", "--since", "2024-03-01T00:00:00Z", "--json")
	require.NoError(t, err)

	var r hours.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, int64(7200), r.TotalSeconds)
	require.Len(t, r.Users, 2)
	assert.Equal(t, "AB1", r.Users[0].UserID)
	assert.Equal(t, "CRD", r.Users[1].UserID)
}

func TestHours_TSVOutput(t *testing.T) {
	env := hoursEnv(t)
	path := filepath.Join(env.dir, "hours.tsv")

	out, err := env.run(t, "", "hours", "--since", "2024-03-01", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "P2024-CRD-FZLL - Finch beaks\t1.50\nP2024-AB1-QWER\t0.50\n", string(data))
}

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("2024-03-01", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.True(t, w.End.IsZero())

	w, err = parseWindow("2024-03-01", "2024-03-31T18:00:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC), w.End)

	_, err = parseWindow("2024-03-01", "soon", time.UTC)
	assert.Error(t, err)
}
