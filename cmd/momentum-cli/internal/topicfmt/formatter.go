// Package topicfmt renders declaration catalogs for the CLI in table and
// JSON form.
package topicfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vgmello/momentum-go/messaging"
)

// Entry is one declaration enriched with its resolved wire name.
type Entry struct {
	Module      string `json:"module"`
	Topic       string `json:"topic"`
	Scope       string `json:"scope"`
	Domain      string `json:"domain"`
	Version     string `json:"version,omitempty"`
	Resolved    string `json:"resolved"`
	Description string `json:"description,omitempty"`
}

// BuildEntries resolves every declaration for the given environment.
func BuildEntries(env string, reg *messaging.Registry, decls []messaging.Declaration) []Entry {
	namer := messaging.NewNamer(env, reg)
	entries := make([]Entry, len(decls))
	for i, d := range decls {
		entries[i] = Entry{
			Module:      d.Module,
			Topic:       d.Topic,
			Scope:       d.Scope(),
			Domain:      strings.ToLower(messaging.ResolveDomain(d.Domain, reg.DefaultDomain(d.Module), d.Module)),
			Version:     d.Version,
			Resolved:    namer.TopicForDeclaration(d),
			Description: d.Description,
		}
	}
	return entries
}

// WriteTable displays entries in a formatted table.
func WriteTable(w io.Writer, entries []Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "MODULE\tTOPIC\tSCOPE\tRESOLVED NAME\tDESCRIPTION")
	fmt.Fprintln(tw, "------\t-----\t-----\t-------------\t-----------")

	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Module,
			e.Topic,
			e.Scope,
			e.Resolved,
			truncateString(e.Description, 40))
	}
}

// WriteJSON displays entries in JSON format with catalog metadata.
func WriteJSON(w io.Writer, env string, entries []Entry) error {
	output := struct {
		Environment string  `json:"environment"`
		Topics      []Entry `json:"topics"`
		Count       int     `json:"count"`
	}{
		Environment: env,
		Topics:      entries,
		Count:       len(entries),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
