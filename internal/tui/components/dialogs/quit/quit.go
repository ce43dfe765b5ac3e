package quit

import (
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/chasedut/docchat/internal/tui/components/dialogs"
	"github.com/chasedut/docchat/internal/tui/styles"
	"github.com/chasedut/docchat/internal/tui/util"
)

const (
	question                      = "Are you sure you want to quit?"
	QuitDialogID dialogs.DialogID = "quit"
)

type quitDialogCmp struct {
	wWidth  int
	wHeight int

	noSelected bool
	keymap     KeyMap
}

// NewQuitDialog creates a new quit confirmation dialog.
func NewQuitDialog() dialogs.DialogModel {
	return &quitDialogCmp{
		keymap: DefaultKeymap(),
	}
}

func (q *quitDialogCmp) Init() tea.Cmd {
	return nil
}

func (q *quitDialogCmp) Update(msg tea.Msg) (dialogs.DialogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		q.wWidth = msg.Width
		q.wHeight = msg.Height
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, q.keymap.LeftRight, q.keymap.Tab):
			q.noSelected = !q.noSelected
		case key.Matches(msg, q.keymap.EnterSpace):
			if !q.noSelected {
				return q, tea.Quit
			}
			return q, util.CmdHandler(dialogs.CloseDialogMsg{})
		case key.Matches(msg, q.keymap.Yes):
			return q, tea.Quit
		case key.Matches(msg, q.keymap.No, q.keymap.Close):
			return q, util.CmdHandler(dialogs.CloseDialogMsg{})
		}
	}
	return q, nil
}

func (q *quitDialogCmp) View() string {
	s := styles.CurrentTheme().S()

	yes, no := s.Selected, s.Button
	if q.noSelected {
		yes, no = s.Button, s.Selected
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		yes.Render("Yep!"), " ", no.Render("Nope"),
	)
	content := lipgloss.JoinVertical(lipgloss.Center, question, "", buttons)
	return s.Dialog.Render(content)
}

func (q *quitDialogCmp) Position() (int, int) {
	row := q.wHeight/2 - 7/2
	col := q.wWidth/2 - 38/2
	return row, col
}

func (q *quitDialogCmp) ID() dialogs.DialogID {
	return QuitDialogID
}
