package cmd

import (
	"os"

	"github.com/spf13/cobra"

	// Register the example module's declarations so the catalog commands
	// have something to show out of the box.
	_ "github.com/vgmello/momentum-go/examples/billing/events"
)

var environment string

var rootCmd = &cobra.Command{
	Use:   "momentum-cli",
	Short: "Momentum messaging CLI tool",
	Long: `Momentum CLI inspects the event declarations registered by the
application's modules and resolves their wire topic names.

Available commands:
  topics    List, resolve and validate event topic declarations

Use "momentum-cli [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&environment, "env", "e", "Development",
		"Environment used to resolve wire topic names")
}
