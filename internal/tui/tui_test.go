package tui_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wheelibin/huectl/internal/hue"
	"github.com/wheelibin/huectl/internal/models"
	"github.com/wheelibin/huectl/internal/tui"
)

type fakeSource struct {
	state *hue.State
	ids   []string
	err   error
	polls int
}

func (f *fakeSource) PollState(ctx context.Context) (*hue.State, error) {
	f.polls++
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

func (f *fakeSource) LightIDs(ctx context.Context) ([]string, error) {
	return f.ids, nil
}

func testLights() map[string]hue.Light {
	return map[string]hue.Light{
		"1": {Name: "Kitchen", State: hue.LightStatus{On: true, Bri: 254, Hue: 8000, Sat: 120, Reachable: true}},
		"2": {Name: "Hallway", State: hue.LightStatus{On: false, Reachable: false}},
	}
}

func Test_LightRows(t *testing.T) {

	t.Run("rows follow the id order", func(t *testing.T) {
		rows := tui.LightRows([]string{"2", "1"}, testLights())

		assert.Equal(t, []models.LightRow{
			{ID: "2", Name: "Hallway"},
			{ID: "1", Name: "Kitchen", Reachable: true, On: true, Brightness: 254, Hue: 8000, Saturation: 120},
		}, rows)
	})

	t.Run("unknown ids are skipped", func(t *testing.T) {
		rows := tui.LightRows([]string{"1", "9"}, testLights())

		assert.Len(t, rows, 1)
		assert.Equal(t, "1", rows[0].ID)
	})
}

func Test_RenderLights(t *testing.T) {
	view := tui.RenderLights(tui.LightRows([]string{"1", "2"}, testLights()))

	assert.Contains(t, view, "Kitchen")
	assert.Contains(t, view, "Hallway")
	assert.Contains(t, view, "254")
}

func Test_Model(t *testing.T) {

	t.Run("first refresh fills the table", func(t *testing.T) {
		// arrange
		source := &fakeSource{state: &hue.State{Lights: testLights()}, ids: []string{"1", "2"}}
		m := tui.NewModel(context.Background(), source, time.Second)

		// act
		msg := m.Init()()
		updated, cmd := m.Update(msg)

		// assert
		require.NotNil(t, cmd)
		assert.Equal(t, 1, source.polls)
		assert.Contains(t, updated.View(), "Kitchen")
		assert.Contains(t, updated.View(), "Hallway")
	})

	t.Run("poll errors are shown", func(t *testing.T) {
		source := &fakeSource{err: errors.New("bridge went away")}
		m := tui.NewModel(context.Background(), source, time.Second)

		updated, _ := m.Update(m.Init()())

		assert.Contains(t, updated.View(), "bridge went away")
	})

	t.Run("q quits", func(t *testing.T) {
		m := tui.NewModel(context.Background(), &fakeSource{}, time.Second)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	})
}
