package cmd

import (
	"github.com/spf13/cobra"
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Manage and explore event topic declarations",
	Long: `The topics command provides tools for discovering, resolving, and validating
the event topic declarations registered by the application's modules. Every
declaration resolves to a deterministic wire name of the form

  {envPrefix}.{domain}.{scope}.{topic}[.{version}]

Available subcommands:
  list      List all registered declarations with optional filtering
  resolve   Resolve a declaration's wire topic name
  validate  Validate registered or candidate declarations

Examples:
  # List all declarations and their wire names in Development
  momentum-cli topics list

  # List the billing module's declarations as JSON, resolved for Production
  momentum-cli topics list --module Billing.Api --format json --env Production

  # Resolve one declaration across all well-known environments
  momentum-cli topics resolve Billing.Api invoice --all-envs

  # Validate everything that is registered
  momentum-cli topics validate

Use "momentum-cli topics [command] --help" for more information about a specific command.`,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
