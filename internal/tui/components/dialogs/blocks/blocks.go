// Package blocks shows a scrollable list of titled text blocks, such as the
// retrieved chunks behind an answer.
package blocks

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/chasedut/docchat/internal/render"
	"github.com/chasedut/docchat/internal/tui/components/dialogs"
	"github.com/chasedut/docchat/internal/tui/styles"
	"github.com/chasedut/docchat/internal/tui/util"
)

const ContextDialogID dialogs.DialogID = "context"

// Page is one screen of blocks under a heading.
type Page struct {
	Heading string
	Blocks  []render.ContextBlock
}

type KeyMap struct {
	Prev  key.Binding
	Next  key.Binding
	Close key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "q", "enter"),
			key.WithHelp("esc", "close"),
		),
	}
}

type blocksDialogCmp struct {
	id      dialogs.DialogID
	title   string
	pages   []Page
	current int

	width, height   int
	wWidth, wHeight int
	viewport        viewport.Model
	keyMap          KeyMap
}

// New opens on page start. Left and right move between pages.
func New(id dialogs.DialogID, title string, pages []Page, start int) dialogs.DialogModel {
	if start < 0 || start >= len(pages) {
		start = len(pages) - 1
	}
	return &blocksDialogCmp{
		id:       id,
		title:    title,
		pages:    pages,
		current:  max(start, 0),
		viewport: viewport.New(),
		keyMap:   DefaultKeyMap(),
	}
}

func (d *blocksDialogCmp) Init() tea.Cmd {
	return nil
}

func (d *blocksDialogCmp) Update(msg tea.Msg) (dialogs.DialogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.wWidth, d.wHeight = msg.Width, msg.Height
		d.width = max(min(msg.Width-8, 100), 30)
		d.height = max(msg.Height-8, 6)
		d.viewport.SetWidth(d.width - 6)
		d.viewport.SetHeight(d.height - 6)
		d.refresh()
		return d, nil
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, d.keyMap.Close):
			return d, util.CmdHandler(dialogs.CloseDialogMsg{})
		case key.Matches(msg, d.keyMap.Prev):
			if d.current > 0 {
				d.current--
				d.refresh()
			}
			return d, nil
		case key.Matches(msg, d.keyMap.Next):
			if d.current < len(d.pages)-1 {
				d.current++
				d.refresh()
			}
			return d, nil
		}
	}
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

func (d *blocksDialogCmp) refresh() {
	d.viewport.SetContent(d.content())
	d.viewport.GotoTop()
}

func (d *blocksDialogCmp) content() string {
	if len(d.pages) == 0 {
		return styles.CurrentTheme().S().Muted.Render("Nothing to show.")
	}
	s := styles.CurrentTheme().S()
	width := max(d.width-6, 10)

	var b strings.Builder
	for i, blk := range d.pages[d.current].Blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Title.Render(blk.Title))
		b.WriteString("\n")
		b.WriteString(s.Base.Width(width).Render(blk.Body))
	}
	return b.String()
}

func (d *blocksDialogCmp) View() string {
	s := styles.CurrentTheme().S()

	header := d.title
	footer := "esc close"
	if len(d.pages) > 0 {
		if h := d.pages[d.current].Heading; h != "" {
			header = d.title + " · " + h
		}
		if len(d.pages) > 1 {
			footer = fmt.Sprintf("%d/%d  ←/→ switch  esc close", d.current+1, len(d.pages))
		}
	}

	return s.Dialog.Width(d.width).Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(header),
		"",
		d.viewport.View(),
		"",
		s.Muted.Render(footer),
	))
}

func (d *blocksDialogCmp) Position() (int, int) {
	return (d.wHeight - d.height) / 2, (d.wWidth - d.width) / 2
}

func (d *blocksDialogCmp) ID() dialogs.DialogID {
	return d.id
}
