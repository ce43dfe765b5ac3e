package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/chasedut/docchat/internal/app"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF so questions can be asked about it",
	Example: heredoc.Doc(`
		docchat upload ~/papers/report.pdf
		docchat ask "What does the report conclude?"
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := app.PrepareFile(args[0])
		if err != nil {
			return err
		}

		a, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer shutdown(a)

		state := a.State
		if err := state.BeginUpload(f); err != nil {
			if st := state.Upload().Status; st.Text != "" {
				return errors.New(st.Text)
			}
			return err
		}

		out := cmd.ErrOrStderr()
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		done := make(chan chat.UploadResult, 1)
		go func() {
			done <- a.PerformUpload(ctx, f)
		}()

		ticker := time.NewTicker(chat.ProgressInterval)
		defer ticker.Stop()
		var res chat.UploadResult
	wait:
		for {
			select {
			case res = <-done:
				break wait
			case <-ticker.C:
				state.TickUpload()
				fmt.Fprintf(out, "\rUploading %s... %3.0f%%", f.Name, state.Upload().Progress.Percent())
			}
		}
		state.CompleteUpload(res)
		fmt.Fprintf(out, "\rUploading %s... %3.0f%%\n", f.Name, state.Upload().Progress.Percent())

		st := state.Upload().Status
		if state.Upload().Phase != chat.UploadSucceeded {
			return errors.New(st.Text)
		}

		doc := state.Document()
		if err := a.RememberDocument(ctx, doc); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintln(w, st.Text)
		fmt.Fprintf(w, "doc_id:   %s\n", doc.DocID)
		fmt.Fprintf(w, "filename: %s\n", doc.Filename)
		fmt.Fprintf(w, "chunks:   %d\n", res.ChunksCount)
		return nil
	},
}
