package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/chasedut/docchat/internal/app"
	"github.com/chasedut/docchat/internal/config"
	"github.com/chasedut/docchat/internal/db"
	"github.com/chasedut/docchat/internal/env"
	"github.com/chasedut/docchat/internal/log"
	"github.com/chasedut/docchat/internal/tui"
	"github.com/chasedut/docchat/internal/version"
	"github.com/spf13/cobra"
)

type terminalSize struct {
	Width  int
	Height int
}

func termSize() terminalSize {
	if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil {
		slog.Debug("Terminal size", "width", w, "height", h)
		return terminalSize{Width: max(w, 80), Height: max(h, 24)}
	}
	slog.Warn("Failed to get terminal size, using defaults")
	return terminalSize{Width: 80, Height: 24}
}

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "D", "", "Directory for the database, log and config file")
	rootCmd.PersistentFlags().StringP("server", "s", "", "Server URL (default http://localhost:5000)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().BoolP("help", "h", false, "Help")

	rootCmd.AddCommand(
		askCmd,
		uploadCmd,
		historyCmd,
		statusCmd,
		whoamiCmd,
		configCmd,
	)
}

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your PDF documents from the terminal",
	Long: heredoc.Doc(`
		docchat is a terminal client for a document question-answering service.
		Upload a PDF and ask questions about it, or talk to the general-purpose
		assistant. Conversations are kept by the server and restored on start.
	`),
	Example: heredoc.Doc(`
		# Start the interactive chat
		docchat

		# Use a server on another host
		docchat --server http://10.0.0.5:5000

		# Run with debug logging
		docchat -d

		# Print version
		docchat -v
	`),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer shutdown(a)

		size := termSize()
		program := tea.NewProgram(
			tui.NewWithSize(cmd.Context(), a, size.Width, size.Height),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
			tea.WithMouseCellMotion(),
			tea.WithWindowSize(size.Width, size.Height),
		)

		go a.Subscribe(program)

		final, err := program.Run()
		if err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		if m, ok := final.(interface{ Err() error }); ok && m.Err() != nil {
			return m.Err()
		}
		return nil
	},
}

func Execute() {
	if err := env.LoadDotEnv(); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration from flags, environment and the
// config file, and starts file logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Init(dataDir, debug)
	if err != nil {
		return nil, err
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.ServerURL = server
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log.Setup(cfg.DataDirectory, cfg.Debug)
	slog.Info("Starting docchat", "version", version.Version, "server", cfg.ServerURL, "data_dir", cfg.DataDirectory)
	return cfg, nil
}

// setupApp handles the setup shared by every command that talks to the server.
func setupApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	conn, err := db.Connect(cmd.Context(), cfg.DataDirectory)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), conn, cfg), nil
}

func shutdown(a *app.App) {
	if err := a.Shutdown(); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
	if err := log.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to close log:", err)
	}
}

// MaybePrependStdin prepends piped standard input to prompt.
func MaybePrependStdin(prompt string) (string, error) {
	if term.IsTerminal(os.Stdin.Fd()) {
		return prompt, nil
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return prompt, err
	}
	if fi.Mode()&os.ModeNamedPipe == 0 {
		return prompt, nil
	}
	bts, err := io.ReadAll(os.Stdin)
	if err != nil {
		return prompt, err
	}
	if prompt == "" {
		return string(bts), nil
	}
	return string(bts) + "\n\n" + prompt, nil
}
