package dialogs

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

type DialogID string

// DialogModel is a modal drawn over the chat.
type DialogModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (DialogModel, tea.Cmd)
	View() string
	// Position returns the top-left row and column of the dialog.
	Position() (int, int)
	ID() DialogID
}

type OpenDialogMsg struct {
	Model DialogModel
}

type CloseDialogMsg struct{}

// DialogCmp keeps a stack of open dialogs; only the top one gets input.
type DialogCmp struct {
	width, height int
	stack         []DialogModel
}

func NewDialogCmp() *DialogCmp {
	return &DialogCmp{}
}

func (d *DialogCmp) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width, d.height = msg.Width, msg.Height
		var cmds []tea.Cmd
		for i, dlg := range d.stack {
			var cmd tea.Cmd
			d.stack[i], cmd = dlg.Update(msg)
			cmds = append(cmds, cmd)
		}
		return tea.Batch(cmds...)
	case OpenDialogMsg:
		return d.open(msg.Model)
	case CloseDialogMsg:
		if len(d.stack) > 0 {
			d.stack = d.stack[:len(d.stack)-1]
		}
		return nil
	}
	if len(d.stack) == 0 {
		return nil
	}
	top := len(d.stack) - 1
	var cmd tea.Cmd
	d.stack[top], cmd = d.stack[top].Update(msg)
	return cmd
}

func (d *DialogCmp) open(m DialogModel) tea.Cmd {
	// Reopening a dialog brings it to the top instead of stacking a copy.
	for i, dlg := range d.stack {
		if dlg.ID() == m.ID() {
			d.stack = append(d.stack[:i], d.stack[i+1:]...)
			break
		}
	}
	initCmd := m.Init()
	m, sizeCmd := m.Update(tea.WindowSizeMsg{Width: d.width, Height: d.height})
	d.stack = append(d.stack, m)
	return tea.Batch(initCmd, sizeCmd)
}

func (d *DialogCmp) HasDialogs() bool {
	return len(d.stack) > 0
}

func (d *DialogCmp) ActiveDialogID() DialogID {
	if len(d.stack) == 0 {
		return ""
	}
	return d.stack[len(d.stack)-1].ID()
}

// GetLayers returns one canvas layer per open dialog, bottom first.
func (d *DialogCmp) GetLayers() []*lipgloss.Layer {
	layers := make([]*lipgloss.Layer, 0, len(d.stack))
	for _, dlg := range d.stack {
		row, col := dlg.Position()
		layers = append(layers, lipgloss.NewLayer(dlg.View()).X(max(col, 0)).Y(max(row, 0)))
	}
	return layers
}
