package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vgmello/momentum-go/messaging"
)

var (
	validateModule     string
	validateTopic      string
	validateDomain     string
	validateVersion    string
	validateInternal   bool
	validatePluralized bool
)

// topicsValidateCmd represents the topics validate command
var topicsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate registered or candidate declarations",
	Long: `Validate event topic declarations against the naming grammar. Every segment
of a wire name must be alphanumeric with dashes or underscores; dots are
reserved as the segment separator.

Without flags, the command validates everything the application registered,
the same check bus construction performs at startup.

With --module and --topic it validates a candidate declaration that does not
have to be registered yet, which is useful while authoring a new event.

Examples:
  # Validate all registered declarations
  momentum-cli topics validate

  # Dry-run a new declaration before writing the code
  momentum-cli topics validate --module Billing.Api --topic refund --pluralized

  # Error case: dots are not allowed inside a topic slug
  momentum-cli topics validate --module Billing.Api --topic bad.slug

Output:
  ✅ Success - Declarations are valid, resolved names are shown
  ❌ Error   - Each violation with the offending field`,
	Run: topicsValidateHandler,
}

func topicsValidateHandler(cmd *cobra.Command, args []string) {
	if validateModule != "" || validateTopic != "" {
		validateCandidate()
		return
	}

	reg := messaging.Default()
	if err := reg.ValidateAll(); err != nil {
		fmt.Printf("❌ Declaration validation failed:\n")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("   %s\n", line)
		}
		os.Exit(1)
	}

	fmt.Printf("✅ All %d registered declarations are valid\n", reg.Count())
}

func validateCandidate() {
	opts := []messaging.Option{messaging.WithVersion(validateVersion)}
	if validateDomain != "" {
		opts = append(opts, messaging.WithDomain(validateDomain))
	}
	if validateInternal {
		opts = append(opts, messaging.Internal())
	}
	if validatePluralized {
		opts = append(opts, messaging.Pluralized())
	}

	decl := messaging.NewDeclaration(validateModule, validateTopic, opts...)
	if err := decl.Validate(); err != nil {
		var declErr *messaging.DeclarationError
		if errors.As(err, &declErr) {
			fmt.Printf("❌ Declaration validation failed: %s (field %s)\n", declErr.Message, declErr.Field)
		} else {
			fmt.Printf("❌ Declaration validation failed: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("✅ Declaration '%s' in module '%s' is valid\n", decl.Topic, decl.Module)
	fmt.Printf("   Scope: %s\n", decl.Scope())
	for _, env := range wellKnownEnvironments {
		name := messaging.TopicName(env, decl, messaging.Default().DefaultDomain(decl.Module))
		fmt.Printf("   %-12s %s\n", env+":", name)
	}
}

func init() {
	topicsCmd.AddCommand(topicsValidateCmd)

	topicsValidateCmd.Flags().StringVar(&validateModule, "module", "", "Module of the candidate declaration")
	topicsValidateCmd.Flags().StringVar(&validateTopic, "topic", "", "Topic slug of the candidate declaration")
	topicsValidateCmd.Flags().StringVar(&validateDomain, "domain", "", "Explicit domain of the candidate declaration")
	topicsValidateCmd.Flags().StringVar(&validateVersion, "version", messaging.DefaultVersion, "Version segment of the candidate declaration (empty omits it)")
	topicsValidateCmd.Flags().BoolVar(&validateInternal, "internal", false, "Mark the candidate declaration module-private")
	topicsValidateCmd.Flags().BoolVar(&validatePluralized, "pluralized", false, "Pluralize the candidate slug at resolution time")
}
