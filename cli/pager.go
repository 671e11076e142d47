package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(2)
)

// pagerModel scrolls a rendered section
type pagerModel struct {
	viewport viewport.Model
	title    string
	content  string
	ready    bool
}

func newPager(title, content string) *pagerModel {
	return &pagerModel{title: title, content: content}
}

func (m *pagerModel) Init() tea.Cmd {
	return nil
}

func (m *pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		// title line + help line
		height := msg.Height - 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *pagerModel) View() string {
	if !m.ready {
		return "\nLoading..."
	}
	help := fmt.Sprintf("%3.f%% • ↑/k ↓/j scroll • g/G top/bottom • q quit", m.viewport.ScrollPercent()*100)
	return titleStyle.Render(m.title) + "\n" + m.viewport.View() + "\n" + helpStyle.Render(help)
}

// RunPager shows content full screen until the user quits
func RunPager(title, content string) error {
	p := tea.NewProgram(newPager(title, content), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
