// Package upload draws the upload widget: the current document, the progress
// bar while uploading and the status line.
package upload

import (
	"fmt"

	"github.com/charmbracelet/bubbles/v2/progress"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/chasedut/docchat/internal/tui/styles"
)

type UploadCmp struct {
	width    int
	progress progress.Model
}

func New() *UploadCmp {
	return &UploadCmp{
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (u *UploadCmp) SetWidth(width int) {
	u.width = width
	u.progress.SetWidth(max(width-4, 10))
}

// View renders the widget for the given upload and document. It returns an
// empty string when there is nothing to show.
func (u *UploadCmp) View(up chat.Upload, doc chat.Document) string {
	s := styles.CurrentTheme().S()

	var lines []string
	switch {
	case up.Phase == chat.UploadUploading:
		lines = append(lines,
			s.Base.Render(fmt.Sprintf("Uploading %s...", up.File.Name)),
			u.progress.ViewAs(up.Progress.Fraction()),
		)
	case doc.Present():
		lines = append(lines, s.Success.Render("📄 "+doc.Filename)+s.Muted.Render("  (ctrl+x to remove)"))
	}

	if up.Status.Text != "" {
		st := s.Muted
		switch up.Status.Kind {
		case chat.StatusSuccess:
			st = s.Success
		case chat.StatusError:
			st = s.Error
		}
		lines = append(lines, st.Render(up.Status.Text))
	}

	if len(lines) == 0 {
		return ""
	}
	return lipgloss.NewStyle().Width(u.width).Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
