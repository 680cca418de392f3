package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"surfcast/internal/spots"
)

// spotItem wraps a Spot for use in a list
type spotItem struct {
	spot *spots.Spot
}

// FilterValue implements list.Item
func (s spotItem) FilterValue() string {
	return s.spot.Name
}

// Title implements list.DefaultItem
func (s spotItem) Title() string {
	return s.spot.Name
}

// Description implements list.DefaultItem
func (s spotItem) Description() string {
	return fmt.Sprintf("id %d • %.3f, %.3f", s.spot.ID, s.spot.Latitude, s.spot.Longitude)
}

// pickerModel is the interactive disambiguation prompt shown when a query
// matches more than one spot.
type pickerModel struct {
	list   list.Model
	chosen *spots.Spot
}

func newPickerModel(query string, candidates []*spots.Spot) pickerModel {
	items := make([]list.Item, len(candidates))
	for i, s := range candidates {
		items[i] = spotItem{spot: s}
	}

	l := list.New(items, list.NewDefaultDelegate(), 60, 2*len(candidates)+8)
	l.Title = fmt.Sprintf("Spots matching %q", query)
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Bold(true)

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(spotItem); ok {
				m.chosen = item.spot
				return m, tea.Quit
			}
		case "q", "esc", "ctrl+c":
			if !m.list.SettingFilter() {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

// pickSpot runs the picker and returns the chosen spot, or nil if the user
// backed out.
func pickSpot(query string, candidates []*spots.Spot) (*spots.Spot, error) {
	final, err := tea.NewProgram(newPickerModel(query, candidates)).Run()
	if err != nil {
		return nil, fmt.Errorf("running spot picker: %w", err)
	}
	return final.(pickerModel).chosen, nil
}
