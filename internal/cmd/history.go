package cmd

import (
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/chasedut/docchat/internal/render"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	historyCmd.Flags().StringP("channel", "c", "", "Only show one chat: document or assistant")
	historyCmd.Flags().StringP("find", "f", "", "Only show messages fuzzy-matching this text")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the conversation stored on the server",
	Example: heredoc.Doc(`
		docchat history
		docchat history -c assistant
		docchat history --find revenue
	`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		channels := chat.Channels
		if name, _ := cmd.Flags().GetString("channel"); name != "" {
			c, ok := chat.ParseChannel(name)
			if !ok {
				return fmt.Errorf("unknown channel %q: use document or assistant", name)
			}
			channels = []chat.Channel{c}
		}
		pattern, _ := cmd.Flags().GetString("find")

		a, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer shutdown(a)

		ctx := cmd.Context()
		id, err := a.ClientID(ctx)
		if err != nil {
			return err
		}
		h, err := a.FetchSession(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch session: %w", err)
		}

		out := cmd.OutOrStdout()
		for i, c := range channels {
			if i > 0 {
				fmt.Fprintln(out)
			}
			color.New(color.Bold, color.FgMagenta).Fprintf(out, "== %s ==\n", render.HeaderFor(c).Title)

			msgs := h[c]
			if pattern != "" {
				matches := render.Find(msgs, pattern)
				if len(matches) == 0 {
					fmt.Fprintln(out, color.HiBlackString("no matches"))
					continue
				}
				for _, m := range matches {
					printMessage(out, m.Index, m.Message)
				}
				continue
			}

			v := render.Messages(c, msgs, render.Options{})
			if v.Empty {
				fmt.Fprintln(out, color.HiBlackString(v.Placeholder.Title))
				fmt.Fprintln(out, color.HiBlackString(v.Placeholder.Body))
				continue
			}
			for _, item := range v.Items {
				printMessage(out, item.Index, msgs[item.Index])
			}
		}
		return nil
	},
}

func printMessage(w io.Writer, index int, m chat.Message) {
	label := color.New(color.FgGreen).Sprint("assistant")
	text := render.StripMarkdown(m.Text)
	switch m.Role {
	case chat.RoleUser:
		label = color.New(color.FgCyan).Sprint("you")
		text = m.Text
	case chat.RoleSystem:
		label = color.New(color.FgYellow).Sprint("system")
	}

	stamp := ""
	if m.Timestamp > 0 {
		stamp = " " + color.HiBlackString(m.Time().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "[%d] %s%s\n%s\n", index+1, label, stamp, text)
	if m.HasContext() {
		fmt.Fprintln(w, color.HiBlackString("(%d context chunks)", len(m.Chunks)))
	}
}
