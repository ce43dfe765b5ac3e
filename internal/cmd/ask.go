package cmd

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/chasedut/docchat/internal/render"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	askCmd.Flags().StringP("channel", "c", "document", "Chat to use: document or assistant")
	askCmd.Flags().String("doc-id", "", "Document to ask about (default: the last uploaded document)")
	askCmd.Flags().Bool("context", false, "Print the retrieved chunks behind the answer")
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask a single question and print the answer",
	Example: heredoc.Doc(`
		# Ask about the last uploaded document
		docchat ask "What is the main conclusion?"

		# Show the passages the answer was based on
		docchat ask --context "Who are the authors?"

		# Ask the general-purpose assistant
		docchat ask -c assistant "Explain retrieval augmented generation"

		# Pipe a question in
		echo "Summarize section 2" | docchat ask
	`),
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("channel")
		channel, ok := chat.ParseChannel(name)
		if !ok {
			return fmt.Errorf("unknown channel %q: use document or assistant", name)
		}

		message, err := MaybePrependStdin(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if strings.TrimSpace(message) == "" {
			return fmt.Errorf("no message given")
		}

		a, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer shutdown(a)

		ctx := cmd.Context()
		if err := a.Bootstrap(ctx); err != nil {
			return err
		}

		if channel == chat.ChannelDocument {
			doc := chat.Document{}
			if id, _ := cmd.Flags().GetString("doc-id"); id != "" {
				doc.DocID = id
			} else if last, found, err := a.LastDocument(ctx); err != nil {
				return err
			} else if found {
				doc = last
			}
			if doc.Present() {
				if err := a.State.AttachDocument(doc); err != nil {
					return err
				}
			}
		}

		replies, err := a.Ask(ctx, channel, message)
		if err != nil {
			return err
		}

		showContext, _ := cmd.Flags().GetBool("context")
		out := cmd.OutOrStdout()
		for _, m := range replies {
			fmt.Fprintln(out, render.StripMarkdown(m.Text))
			if showContext && m.HasContext() {
				for _, b := range render.ContextBlocks(m.Chunks) {
					fmt.Fprintln(out)
					fmt.Fprintln(out, color.New(color.FgCyan, color.Bold).Sprint(b.Title))
					fmt.Fprintln(out, b.Body)
				}
			}
		}
		return nil
	},
}
