package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vgmello/momentum-go/cmd/momentum-cli/internal/topicfmt"
	"github.com/vgmello/momentum-go/messaging"
)

var (
	listOutputFormat string
	listModuleFilter string
	listScopeFilter  string
)

// topicsListCmd represents the topics list command
var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered topic declarations",
	Long: `List every event declaration currently registered, together with the wire
topic name it resolves to in the selected environment.

Examples:
  # Basic usage
  momentum-cli topics list                          # All declarations, table format
  momentum-cli topics list --format json            # All declarations, JSON format
  momentum-cli topics list --env Production         # Resolve names for Production

  # Filtering options
  momentum-cli topics list --module Billing.Api     # Only the billing module
  momentum-cli topics list --scope internal         # Only module-private declarations

Output formats:
  table - Human-readable table format (default)
  json  - Machine-readable JSON format with metadata`,
	Run: topicsListHandler,
}

func topicsListHandler(cmd *cobra.Command, args []string) {
	reg := messaging.Default()

	var decls []messaging.Declaration
	if listModuleFilter != "" {
		decls = reg.ListModule(listModuleFilter)
	} else {
		decls = reg.List()
	}

	if listScopeFilter != "" {
		scope := strings.ToLower(listScopeFilter)
		if scope != messaging.ScopePublic && scope != messaging.ScopeInternal {
			fmt.Fprintf(os.Stderr, "Error: Invalid scope '%s'. Valid scopes: public, internal\n", listScopeFilter)
			os.Exit(1)
		}
		filtered := decls[:0]
		for _, d := range decls {
			if d.Scope() == scope {
				filtered = append(filtered, d)
			}
		}
		decls = filtered
	}

	if len(decls) == 0 {
		message := "No topics found"
		var filters []string
		if listModuleFilter != "" {
			filters = append(filters, fmt.Sprintf("module '%s'", listModuleFilter))
		}
		if listScopeFilter != "" {
			filters = append(filters, fmt.Sprintf("scope '%s'", listScopeFilter))
		}
		if len(filters) > 0 {
			message += " matching: " + strings.Join(filters, ", ")
		}
		fmt.Println(message)
		return
	}

	entries := topicfmt.BuildEntries(environment, reg, decls)

	switch listOutputFormat {
	case "json":
		if err := topicfmt.WriteJSON(os.Stdout, environment, entries); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
			os.Exit(1)
		}
	case "table":
		topicfmt.WriteTable(os.Stdout, entries)
	default:
		fmt.Fprintf(os.Stderr, "Error: Unsupported output format '%s'. Use 'table' or 'json'\n", listOutputFormat)
		os.Exit(1)
	}
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)

	topicsListCmd.Flags().StringVarP(&listOutputFormat, "format", "f", "table", "Output format (table, json)")
	topicsListCmd.Flags().StringVarP(&listModuleFilter, "module", "m", "", "Filter declarations by module name")
	topicsListCmd.Flags().StringVarP(&listScopeFilter, "scope", "s", "", "Filter declarations by scope (public, internal)")
}
