package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/wheelibin/huectl/internal/hue"
	"github.com/wheelibin/huectl/internal/models"
)

const headerBackgroundColor = "#1e7ba0"

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

var columns = []table.Column{
	{Title: "ID", Width: 4},
	{Title: "Light", Width: 24},
	{Title: "Reachable", Width: 10},
	{Title: "On", Width: 5},
	{Title: "Bri", Width: 5},
	{Title: "Hue", Width: 6},
	{Title: "Sat", Width: 5},
}

// Source is the part of a hue session the status view reads from.
type Source interface {
	PollState(ctx context.Context) (*hue.State, error)
	LightIDs(ctx context.Context) ([]string, error)
}

type lightUpdateMessage struct {
	rows []models.LightRow
}

type pollErrorMessage struct {
	err error
}

type tickMessage struct{}

// LightRows turns a bridge snapshot into table rows, in the order of ids.
func LightRows(ids []string, lights map[string]hue.Light) []models.LightRow {
	return lo.FilterMap(ids, func(id string, _ int) (models.LightRow, bool) {
		l, ok := lights[id]
		if !ok {
			return models.LightRow{}, false
		}
		return models.LightRow{
			ID:         id,
			Name:       l.Name,
			Reachable:  l.State.Reachable,
			On:         l.State.On,
			Brightness: l.State.Bri,
			Hue:        l.State.Hue,
			Saturation: l.State.Sat,
		}, true
	})
}

// FetchRows polls the bridge once and returns the rows for every light.
func FetchRows(ctx context.Context, source Source) ([]models.LightRow, error) {
	state, err := source.PollState(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := source.LightIDs(ctx)
	if err != nil {
		return nil, err
	}
	return LightRows(ids, state.Lights), nil
}

func tableRows(rows []models.LightRow) []table.Row {
	return lo.Map(rows, func(r models.LightRow, _ int) table.Row {
		return table.Row{
			r.ID,
			r.Name,
			fmt.Sprint(r.Reachable),
			fmt.Sprint(r.On),
			fmt.Sprint(r.Brightness),
			fmt.Sprint(r.Hue),
			fmt.Sprint(r.Saturation),
		}
	})
}

func newTable(rows []models.LightRow, focused bool) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows(rows)),
		table.WithFocused(focused),
		table.WithHeight(len(rows)+4),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Background(lipgloss.Color(headerBackgroundColor)).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	if !focused {
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)
	return t
}

// RenderLights renders the rows once, for non interactive output.
func RenderLights(rows []models.LightRow) string {
	return baseStyle.Render(newTable(rows, false).View()) + "\n"
}

// Model is the live status view. It re-polls the bridge every interval until quit.
type Model struct {
	ctx      context.Context
	source   Source
	interval time.Duration

	table table.Model
	err   error
}

func NewModel(ctx context.Context, source Source, interval time.Duration) Model {
	return Model{
		ctx:      ctx,
		source:   source,
		interval: interval,
		table:    newTable(nil, true),
	}
}

// Run starts the live view and blocks until the user quits.
func Run(ctx context.Context, source Source, interval time.Duration) error {
	p := tea.NewProgram(NewModel(ctx, source, interval), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (m Model) refresh() tea.Msg {
	rows, err := FetchRows(m.ctx, m.source)
	if err != nil {
		return pollErrorMessage{err: err}
	}
	return lightUpdateMessage{rows: rows}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMessage{}
	})
}

func (m Model) Init() tea.Cmd {
	return m.refresh
}

func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case lightUpdateMessage:
		m.err = nil
		m.table.SetHeight(len(msg.rows) + 4)
		m.table.SetRows(tableRows(msg.rows))
		return m, m.tick()

	case pollErrorMessage:
		m.err = msg.err
		return m, m.tick()

	case tickMessage:
		return m, m.refresh
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(message)
	return m, cmd
}

func (m Model) View() string {
	view := baseStyle.Render(m.table.View()) + "\n"
	if m.err != nil {
		view += errorStyle.Render(m.err.Error()) + "\n"
	}
	return view + "press q to quit\n"
}
