// Package chat draws one channel's conversation and its input line.
package chat

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/chasedut/docchat/internal/render"
	"github.com/chasedut/docchat/internal/tui/styles"
)

const (
	// InputHeight is the number of rows taken by the bordered input line.
	InputHeight  = 3
	headerHeight = 3

	disabledPlaceholder = "Upload a PDF document first (ctrl+u)"
)

// ChatCmp renders a render.View: header, messages, typing indicator and the
// input line.
type ChatCmp struct {
	width, height int

	input    textinput.Model
	viewport viewport.Model
	keyMap   KeyMap

	view        render.View
	typingFrame int

	markdown  bool
	renderer  *glamour.TermRenderer
	rendererW int
}

type KeyMap struct {
	PageUp   key.Binding
	PageDown key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// New returns a chat pane. With markdown set, assistant text is rendered with
// glamour instead of stripped.
func New(markdown bool) *ChatCmp {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4000

	return &ChatCmp{
		input:    ti,
		viewport: viewport.New(),
		keyMap:   DefaultKeyMap(),
		markdown: markdown,
	}
}

func (c *ChatCmp) Init() tea.Cmd {
	return c.input.Focus()
}

func (c *ChatCmp) SetSize(width, height int) {
	c.width, c.height = width, height
	c.input.SetWidth(max(width-6, 10))
	c.viewport.SetWidth(width)
	c.viewport.SetHeight(max(height-headerHeight-InputHeight-1, 1))
	c.refresh(true)
}

// Options returns the projection options matching how this pane draws text.
func (c *ChatCmp) Options() render.Options {
	if !c.markdown {
		return render.Options{}
	}
	return render.Options{Format: c.renderMarkdown}
}

func (c *ChatCmp) renderMarkdown(s string) string {
	width := max(c.width-8, 20)
	if c.renderer == nil || c.rendererW != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			slog.Warn("Markdown renderer unavailable", "error", err)
			return render.StripMarkdown(s)
		}
		c.renderer, c.rendererW = r, width
	}
	out, err := c.renderer.Render(s)
	if err != nil {
		return render.StripMarkdown(s)
	}
	return strings.Trim(out, "\n")
}

// SetView replaces what the pane shows. The scroll position follows new
// messages when it was already at the bottom.
func (c *ChatCmp) SetView(v render.View) tea.Cmd {
	switched := v.Channel != c.view.Channel
	c.view = v

	header := render.HeaderFor(v.Channel)
	if v.InputEnabled {
		c.input.Placeholder = header.Placeholder
	} else {
		c.input.Placeholder = disabledPlaceholder
	}

	c.refresh(switched || c.viewport.AtBottom())

	if v.InputEnabled && !c.input.Focused() {
		return c.input.Focus()
	}
	if !v.InputEnabled && c.input.Focused() {
		c.input.Blur()
	}
	return nil
}

// Typing advances the typing indicator animation.
func (c *ChatCmp) Typing() {
	c.typingFrame++
	c.refresh(c.viewport.AtBottom())
}

func (c *ChatCmp) refresh(toBottom bool) {
	c.viewport.SetContent(c.content())
	if toBottom {
		c.viewport.GotoBottom()
	}
}

func (c *ChatCmp) Update(msg tea.Msg) (*ChatCmp, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, c.keyMap.PageUp, c.keyMap.PageDown):
			var cmd tea.Cmd
			c.viewport, cmd = c.viewport.Update(msg)
			return c, cmd
		}
		if !c.view.InputEnabled {
			return c, nil
		}
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return c, cmd
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// Value returns the typed text.
func (c *ChatCmp) Value() string {
	return c.input.Value()
}

func (c *ChatCmp) Reset() {
	c.input.Reset()
}

func (c *ChatCmp) content() string {
	t := styles.CurrentTheme()
	s := t.S()
	width := max(c.width-2, 10)
	bubbleWidth := max(width*3/4, 10)

	if c.view.Empty {
		p := c.view.Placeholder
		body := lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Render(p.Title),
			"",
			s.Muted.Width(min(bubbleWidth, 70)).Align(lipgloss.Center).Render(p.Body),
		)
		return lipgloss.Place(width, max(c.viewport.Height(), 1), lipgloss.Center, lipgloss.Center, body)
	}

	var b strings.Builder
	ctx := 0
	for i, item := range c.view.Items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		stamp := s.Muted.Render(item.Time.Format("15:04"))
		switch item.Kind {
		case render.KindUser:
			bubble := s.User.MaxWidth(bubbleWidth).Render(wrap(item.Text, bubbleWidth-2))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)))
		case render.KindSystem:
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.System.Render(wrap(item.Text, bubbleWidth))))
		default:
			lines := []string{s.Assistant.MaxWidth(bubbleWidth).Render(wrap(item.Text, bubbleWidth-2))}
			meta := stamp
			if item.HasContext() {
				ctx++
				meta += "  " + s.Success.Render(fmt.Sprintf("[View Context %d · ctrl+o]", ctx))
			}
			lines = append(lines, meta)
			b.WriteString(lipgloss.JoinVertical(lipgloss.Left, lines...))
		}
	}
	if c.view.Typing {
		b.WriteString("\n\n")
		dots := strings.Repeat(".", c.typingFrame%4)
		b.WriteString(s.Muted.Render("Assistant is typing" + dots))
	}
	return b.String()
}

func (c *ChatCmp) View() string {
	t := styles.CurrentTheme()
	s := t.S()
	header := render.HeaderFor(c.view.Channel)

	head := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(header.Title),
		s.Subtitle.Render(header.Subtitle),
	)

	border := t.BorderFocus
	if !c.view.InputEnabled {
		border = t.Border
	}
	input := lipgloss.NewStyle().
		Width(max(c.width-2, 10)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(c.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		head,
		"",
		c.viewport.View(),
		input,
	)
}

// wrap soft-wraps text at width without breaking words where possible.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wrap(text, width, "")
}
