package timesheet

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/projctl/internal/hours"
	"github.com/fyrsmithlabs/projctl/internal/logging"
)

func TestCheckStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, CheckStart(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), now))
	assert.NoError(t, CheckStart(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), now))
	assert.ErrorIs(t, CheckStart(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), now), ErrStartTooOld)
	assert.ErrorIs(t, CheckStart(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), now), ErrStartTooOld)
}

func TestCost(t *testing.T) {
	tests := []struct {
		seconds int64
		rate    string
		want    string
	}{
		{5400, "20", "30.00"},
		{3600, "45.5", "45.50"},
		{1000, "36", "10.00"},
		{1000, "45.5", "12.64"}, // 12.6388...
		{60, "0.01", "0.01"},    // 0.000166...
		{0, "45.5", "0.00"},
	}
	for _, tt := range tests {
		got := Cost(tt.seconds, decimal.RequireFromString(tt.rate))
		assert.Equal(t, tt.want, got.StringFixed(2), "%ds at %s", tt.seconds, tt.rate)
	}
}

func fixtureReport() hours.Report {
	return hours.Report{
		Projects: []hours.ProjectHours{
			{TogglID: 1, Name: "P2024-CRD-FZLL - Finch beaks", ProjectID: "P2024-CRD-FZLL", Seconds: 5400},
			{TogglID: 5, Name: "Holiday", Seconds: 3600},
			{TogglID: 2, Name: "P2024-AB1-QWER", ProjectID: "P2024-AB1-QWER", Seconds: 1800},
			{TogglID: 3, Name: "P2023-CRD-ABCD", ProjectID: "P2023-CRD-ABCD", Seconds: 900},
			{TogglID: 4, Name: "P2024-JAS-DEFG - Genomes", ProjectID: "P2024-JAS-DEFG", Seconds: 600},
			{TogglID: 6, Name: "P2024-CRD-FZLL - Finch beaks (old)", ProjectID: "P2024-CRD-FZLL", Seconds: 1800},
		},
	}
}

func TestBuild(t *testing.T) {
	book, err := ParseBook([]byte(fixtureBook))
	require.NoError(t, err)

	tl := logging.NewTestLogger()
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	s := Build(ctx, fixtureReport(), book)
	require.Len(t, s.Lines, 2)

	first := s.Lines[0]
	assert.Equal(t, "R123456", first.Workorder)
	assert.Equal(t, "P2024-CRD-FZLL", first.ProjectID)
	assert.Equal(t, int64(7200), first.Seconds)
	assert.Equal(t, "91.00", first.Cost.StringFixed(2))
	assert.Equal(t, "Finch beaks", first.Name)
	assert.Equal(t, "P2024-CRD-FZLL: Finch beaks", first.Title())

	second := s.Lines[1]
	assert.Equal(t, "M654321", second.Workorder)
	assert.Equal(t, "18.00", second.Cost.StringFixed(2))
	assert.Equal(t, "P2024-AB1-QWER", second.Title())

	assert.Equal(t, "109.00", s.Total.StringFixed(2))
	assert.Equal(t, []string{"P2023-CRD-ABCD", "P2024-JAS-DEFG"}, s.Skipped)

	tl.AssertLogged(t, zapcore.WarnLevel, "workorder incomplete")
	tl.AssertField(t, "workorder incomplete", "workorder", "A000001")
}

func TestSheet_WriteTSV(t *testing.T) {
	book, err := ParseBook([]byte(fixtureBook))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Build(context.Background(), fixtureReport(), book).WriteTSV(&buf))

	want := "R123456\tP2024-CRD-FZLL\tDI\tFEC\t45.5\t2.00\t91.00\tFinch beaks\tP2024-CRD-FZLL: Finch beaks\n" +
		"M654321\tP2024-AB1-QWER\tDA\tCharity\t36\t0.50\t18.00\t\tP2024-AB1-QWER\n"
	assert.Equal(t, want, buf.String())
}
