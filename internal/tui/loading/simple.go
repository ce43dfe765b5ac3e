package loading

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/chasedut/docchat/internal/tui/styles"
	"github.com/chasedut/docchat/internal/version"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SimpleLoadingScreen is shown while the session is restored.
type SimpleLoadingScreen struct {
	width  int
	height int
	frame  int
	theme  *styles.Theme
}

func NewSimple() *SimpleLoadingScreen {
	return &SimpleLoadingScreen{
		theme: styles.CurrentTheme(),
	}
}

func (l *SimpleLoadingScreen) Init() tea.Cmd {
	return animateSimple()
}

func (l *SimpleLoadingScreen) SetSize(width, height int) {
	l.width, l.height = width, height
}

func (l *SimpleLoadingScreen) Update(msg tea.Msg) (*SimpleLoadingScreen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.SetSize(msg.Width, msg.Height)
	case simpleAnimateMsg:
		l.frame++
		return l, animateSimple()
	}
	return l, nil
}

func (l *SimpleLoadingScreen) View() string {
	if l.width == 0 || l.height == 0 {
		return ""
	}

	messages := []string{
		"Loading client identity",
		"Restoring conversation",
		"Checking server status",
	}
	spinner := frames[l.frame%len(frames)]
	text := spinner + "  " + messages[(l.frame/10)%len(messages)] + "..."

	title := lipgloss.NewStyle().Foreground(l.theme.Primary).Bold(true)
	loading := lipgloss.NewStyle().Foreground(l.theme.FgMuted).MarginTop(2)
	ver := lipgloss.NewStyle().Foreground(l.theme.FgHalfMuted).MarginTop(1)

	var content strings.Builder
	content.WriteString(title.Render("docchat"))
	content.WriteString("\n")
	content.WriteString(loading.Render(text))
	content.WriteString("\n")
	content.WriteString(ver.Render("Document Q&A · " + version.Version))

	return lipgloss.Place(l.width, l.height, lipgloss.Center, lipgloss.Center, content.String())
}

type simpleAnimateMsg struct{}

func animateSimple() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return simpleAnimateMsg{}
	})
}
