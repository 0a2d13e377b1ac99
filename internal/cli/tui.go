package cli

import (
	"github.com/spf13/cobra"

	"github.com/n0roo/vibespinner/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the catalog dashboard",
	Long:  `Runs the terminal dashboard for browsing, filtering and editing places.`,
	RunE:  runTui,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTui(cmd *cobra.Command, args []string) error {
	a, cleanup, err := getApp()
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(a)
}
