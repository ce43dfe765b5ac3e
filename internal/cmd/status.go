package cmd

import (
	"fmt"

	"github.com/chasedut/docchat/internal/chat"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the server is up and its models are loaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer shutdown(a)

		r := a.CheckStatus(cmd.Context())
		var dot string
		switch r {
		case chat.ReadinessReady:
			dot = color.GreenString("●")
		case chat.ReadinessLoading:
			dot = color.YellowString("●")
		default:
			dot = color.RedString("●")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", dot, r, color.HiBlackString(a.Client.BaseURL()))
		return nil
	},
}
