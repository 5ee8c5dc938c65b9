package hours

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	sparklineWidth  = 30
	sparklineHeight = 3
	barWidth        = 30
	maxRows         = 12
	fetchTimeout    = 30 * time.Second
)

// Model is the live hours dashboard.
type Model struct {
	ctx        context.Context
	source     Source
	window     Window
	interval   time.Duration
	now        func() time.Time
	lastUpdate time.Time
	report     Report
	loaded     bool
	err        error
	quitting   bool

	bar progress.Model
}

// Lipgloss styles (k9s-inspired color scheme)
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))
)

// NewModel creates a dashboard that refetches w from src every interval.
func NewModel(ctx context.Context, src Source, w Window, interval time.Duration) Model {
	return Model{
		ctx:      ctx,
		source:   src,
		window:   w,
		interval: interval,
		now:      time.Now,
		bar: progress.New(
			progress.WithGradient("#00ffff", "#ff00ff"),
			progress.WithWidth(barWidth),
		),
	}
}

// Message types
type tickMsg time.Time
type reportMsg struct {
	report Report
	at     time.Time
}
type errMsg struct{ err error }

// Init starts the refresh loop and the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(m.interval),
		m.fetch(),
	)
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetch() tea.Cmd {
	ctx, src, w, now := m.ctx, m.source, m.window, m.now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		at := now()
		r, err := Fetch(ctx, src, w, at)
		if err != nil {
			return errMsg{err}
		}
		return reportMsg{report: r, at: at}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}

	case tickMsg:
		return m, tea.Batch(
			tick(m.interval),
			m.fetch(),
		)

	case reportMsg:
		m.report = msg.report
		m.lastUpdate = msg.at
		m.loaded = true
		m.err = nil
		return m, nil

	case errMsg:
		// Keep the last good report on screen.
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// View renders the dashboard
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	lastUpdateStr := "never"
	if !m.lastUpdate.IsZero() {
		lastUpdateStr = m.lastUpdate.Format("3:04:05 PM")
	}
	b.WriteString(headerStyle.Render(" projctl hours ") + "\n")
	b.WriteString(dimStyle.Render("Since ") + valueStyle.Render(m.window.Start.Format(dayLayout)) +
		dimStyle.Render("   updated "+lastUpdateStr) + "\n")

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("⚠ "+m.err.Error()) + "\n")
	}

	switch {
	case !m.loaded:
		b.WriteString("\n" + dimStyle.Render("Loading time entries...") + "\n")
	case len(m.report.Projects) == 0:
		b.WriteString("\n" + dimStyle.Render("No time tracked in this window.") + "\n")
	default:
		b.WriteString(m.renderProjects())
		b.WriteString(m.renderUsers())
		b.WriteString(m.renderDaily())
	}

	footer := footerKeyStyle.Render("[q]") + footerStyle.Render(" quit  ") +
		footerKeyStyle.Render("[r]") + footerStyle.Render(" refresh  ") +
		footerStyle.Render(fmt.Sprintf("Auto: %v", m.interval))
	b.WriteString("\n" + footer)

	return containerStyle.Render(b.String())
}

func (m Model) renderProjects() string {
	var b strings.Builder
	b.WriteString("\n" + sectionStyle.Render("┃ Projects") + "  " +
		labelStyle.Render("Total: ") + valueStyle.Render(FormatDuration(m.report.TotalSeconds)) + "\n")

	rows := m.report.Projects
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	for _, p := range rows {
		share := m.report.Share(p)
		b.WriteString("  " + m.bar.ViewAs(share) + " " +
			valueStyle.Render(fmt.Sprintf("%7s", FormatHours(p.Seconds))) + "  " +
			labelStyle.Render(p.Name) + "\n")
	}
	if hidden := len(m.report.Projects) - len(rows); hidden > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", hidden)) + "\n")
	}
	if m.report.Running > 0 {
		b.WriteString(warningStyle.Render(fmt.Sprintf("  %d running entries not counted", m.report.Running)) + "\n")
	}
	return b.String()
}

func (m Model) renderUsers() string {
	var b strings.Builder
	b.WriteString("\n" + sectionStyle.Render("┃ Users") + "\n")
	for _, u := range m.report.Users {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-12s ", u.UserID)) +
			valueStyle.Render(FormatHours(u.Seconds)) +
			dimStyle.Render(fmt.Sprintf("  %d projects", len(u.Projects))) + "\n")
	}
	return b.String()
}

func (m Model) renderDaily() string {
	return "\n" + sectionStyle.Render("┃ Daily") + "\n" + createSparkline(m.report.DailyHours()) + "\n"
}

// createSparkline creates a sparkline chart from daily totals
func createSparkline(data []float64) string {
	if len(data) == 0 {
		return dimStyle.Render(fmt.Sprintf("%*s", sparklineWidth, "no data"))
	}

	spark := sparkline.New(sparklineWidth, sparklineHeight)
	spark.PushAll(data)
	spark.Draw()

	return sparklineStyle.Render(spark.View())
}
