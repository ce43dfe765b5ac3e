// Package prompt is a one-line input dialog.
package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/chasedut/docchat/internal/tui/components/dialogs"
	"github.com/chasedut/docchat/internal/tui/styles"
	"github.com/chasedut/docchat/internal/tui/util"
)

const defaultWidth = 60

// SubmittedMsg carries the entered value back to the opener.
type SubmittedMsg struct {
	ID    dialogs.DialogID
	Value string
}

type KeyMap struct {
	Submit key.Binding
	Close  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

type promptDialogCmp struct {
	id      dialogs.DialogID
	title   string
	hint    string
	width   int
	wWidth  int
	wHeight int
	input   textinput.Model
	keyMap  KeyMap
}

// New returns a dialog titled title that reports its value as a SubmittedMsg
// tagged with id. Blank values are not submitted.
func New(id dialogs.DialogID, title, placeholder, hint string) dialogs.DialogModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 1024

	return &promptDialogCmp{
		id:     id,
		title:  title,
		hint:   hint,
		width:  defaultWidth,
		input:  ti,
		keyMap: DefaultKeyMap(),
	}
}

func (d *promptDialogCmp) Init() tea.Cmd {
	d.input.SetWidth(d.width - 8)
	return d.input.Focus()
}

func (d *promptDialogCmp) Update(msg tea.Msg) (dialogs.DialogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.wWidth = msg.Width
		d.wHeight = msg.Height
		d.width = min(defaultWidth, max(msg.Width-4, 20))
		d.input.SetWidth(d.width - 8)
		return d, nil
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, d.keyMap.Close):
			return d, util.CmdHandler(dialogs.CloseDialogMsg{})
		case key.Matches(msg, d.keyMap.Submit):
			value := strings.TrimSpace(d.input.Value())
			if value == "" {
				return d, nil
			}
			return d, tea.Sequence(
				util.CmdHandler(dialogs.CloseDialogMsg{}),
				util.CmdHandler(SubmittedMsg{ID: d.id, Value: value}),
			)
		}
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d *promptDialogCmp) View() string {
	s := styles.CurrentTheme().S()
	parts := []string{
		s.Title.Render(d.title),
		"",
		d.input.View(),
	}
	if d.hint != "" {
		parts = append(parts, "", s.Muted.Render(d.hint))
	}
	return s.Dialog.Width(d.width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (d *promptDialogCmp) Position() (int, int) {
	row := d.wHeight/2 - 4
	col := d.wWidth/2 - d.width/2
	return row, col
}

func (d *promptDialogCmp) ID() dialogs.DialogID {
	return d.id
}
