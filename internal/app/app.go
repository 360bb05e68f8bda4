package app

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/router"
	"github.com/kakomon/kakomon/internal/screen"
	"github.com/kakomon/kakomon/internal/screens"
	"github.com/kakomon/kakomon/internal/screens/home"
	"github.com/kakomon/kakomon/internal/screens/welcome"
	"github.com/kakomon/kakomon/internal/ui/layout"
)

var quitKey = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	user   string
	width  int
	height int
}

// Options controls how the terminal app starts.
type Options struct {
	// Splash shows the welcome banner before the section list.
	Splash bool
}

// newAppModel creates a new AppModel starting at the home screen, or at
// the splash when opts.Splash is set.
func newAppModel(svc *screens.Services, opts Options) AppModel {
	var first screen.Screen = home.New(svc)
	if opts.Splash {
		first = welcome.New(func() screen.Screen { return home.New(svc) })
	}
	return AppModel{
		router: router.New(first),
		user:   svc.UserID,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// frame renders header, active screen and footer for the current size.
func (m AppModel) frame() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.user, m.width)

	var hints []key.Binding
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	hints = append(hints, quitKey)
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(svc *screens.Services, opts Options) error {
	p := tea.NewProgram(newAppModel(svc, opts))
	if _, err := p.Run(); err != nil {
		svc.Log.Error("tui exited", "error", err)
		return fmt.Errorf("run terminal app: %w", err)
	}
	return nil
}
