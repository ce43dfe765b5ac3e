package cmd

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/chasedut/docchat/internal/config"
	"github.com/chasedut/docchat/internal/env"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd, configSchemaCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings in the config file",
	Long: heredoc.Docf(`
		Settings live in %s inside the data directory. Environment variables
		(DOCCHAT_SERVER_URL, DOCCHAT_REQUEST_TIMEOUT, ...) and flags override them.

		Keys: %s
	`, config.FileName, strings.Join(config.Keys, ", ")),
	Example: heredoc.Doc(`
		docchat config set server_url http://10.0.0.5:5000
		docchat config set request_timeout 90s
		docchat config get server_url
	`),
}

// dataDir resolves the data directory without starting logging or touching
// the database.
func dataDir(cmd *cobra.Command) string {
	if d, _ := cmd.Flags().GetString("data-dir"); d != "" {
		return d
	}
	e := env.New()
	if d := e.Get("DOCCHAT_DATA_DIR"); d != "" {
		return d
	}
	return config.DefaultDataDir(e)
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Print the value of a key",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, ok, err := config.GetField(dataDir(cmd), args[0])
		if err != nil {
			return err
		}
		if !ok {
			cfg, err := config.Load(dataDir(cmd), env.New())
			if err != nil {
				return err
			}
			v = effective(cfg, args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Write a key to the config file",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.SetField(dataDir(cmd), args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{DataDirectory: dataDir(cmd)}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.ConfigPath())
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Schema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func effective(cfg *config.Config, key string) string {
	switch key {
	case "server_url":
		return cfg.ServerURL
	case "request_timeout":
		b, _ := cfg.RequestTimeout.MarshalText()
		return string(b)
	case "render_markdown":
		return fmt.Sprint(cfg.RenderMarkdown)
	case "debug":
		return fmt.Sprint(cfg.Debug)
	}
	return ""
}
