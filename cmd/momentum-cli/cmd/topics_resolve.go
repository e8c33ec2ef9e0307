package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vgmello/momentum-go/messaging"
)

var resolveAllEnvs bool

// wellKnownEnvironments are the environments resolve cycles through with
// --all-envs.
var wellKnownEnvironments = []string{"Development", "Test", "Staging", "Production"}

// topicsResolveCmd represents the topics resolve command
var topicsResolveCmd = &cobra.Command{
	Use:   "resolve <module> <topic>",
	Short: "Resolve a declaration's wire topic name",
	Long: `Resolve the wire topic name of a registered declaration. The declaration is
looked up by its owning module and topic slug, then rendered for the
environment selected with --env.

Examples:
  # Resolve for the default Development environment
  momentum-cli topics resolve Billing.Api invoice

  # Resolve for Production
  momentum-cli topics resolve Billing.Api invoice --env Production

  # Show the name in every well-known environment
  momentum-cli topics resolve Billing.Api invoice --all-envs

The plain form prints only the resolved name, so it can be used in scripts:
  kafka-topics.sh --create --topic "$(momentum-cli topics resolve Billing.Api invoice --env Production)"`,
	Args: cobra.ExactArgs(2),
	Run:  topicsResolveHandler,
}

func topicsResolveHandler(cmd *cobra.Command, args []string) {
	module, slug := args[0], args[1]

	reg := messaging.Default()
	var decl messaging.Declaration
	found := false
	for _, d := range reg.ListModule(module) {
		if d.Topic == slug {
			decl = d
			found = true
			break
		}
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Error: no declaration '%s' in module '%s'\n", slug, module)
		fmt.Fprintf(os.Stderr, "\nUse 'momentum-cli topics list' to see all registered declarations.\n")
		os.Exit(1)
	}

	if resolveAllEnvs {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "ENVIRONMENT\tRESOLVED NAME")
		fmt.Fprintln(w, "-----------\t-------------")
		for _, env := range wellKnownEnvironments {
			namer := messaging.NewNamer(env, reg)
			fmt.Fprintf(w, "%s\t%s\n", env, namer.TopicForDeclaration(decl))
		}
		return
	}

	namer := messaging.NewNamer(environment, reg)
	fmt.Println(namer.TopicForDeclaration(decl))
}

func init() {
	topicsCmd.AddCommand(topicsResolveCmd)

	topicsResolveCmd.Flags().BoolVar(&resolveAllEnvs, "all-envs", false, "Resolve for every well-known environment")
}
