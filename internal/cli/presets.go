package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitscribe/internal/prompt"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available instruction presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), prompt.ListPresets())
		return nil
	},
}
