package messaging

import (
	"fmt"
	"regexp"
)

// DefaultVersion is the version segment a declaration carries unless
// overridden with WithVersion.
const DefaultVersion = "v1"

// Scope values used as the third segment of every wire topic name.
const (
	ScopePublic   = "public"
	ScopeInternal = "internal"
)

// Declaration is the immutable per-message-type record that drives topic name
// resolution. It is created once when the message type is defined and never
// mutated afterwards, so it can be read concurrently without locking.
type Declaration struct {
	// Module is the full name of the owning module, e.g. "Billing.Api".
	// Its first dot-separated segment is the domain of last resort.
	Module string `json:"module"`

	// Topic is the slug used as the fourth segment of the wire name.
	Topic string `json:"topic"`

	// Domain overrides domain resolution when non-empty.
	Domain string `json:"domain,omitempty"`

	// Version is appended as the final segment. Empty omits the segment.
	Version string `json:"version,omitempty"`

	// Internal marks the declaration as module-private; the scope segment
	// becomes "internal" instead of "public".
	Internal bool `json:"internal"`

	// Pluralize appends an "s" to the slug at resolution time.
	Pluralize bool `json:"pluralize"`

	// Description is human-readable documentation surfaced by tooling.
	Description string `json:"description,omitempty"`
}

// Option configures a Declaration at construction time.
type Option func(*Declaration)

// NewDeclaration creates a declaration for the given module and topic slug.
// The version defaults to DefaultVersion and the scope to public.
func NewDeclaration(module, topic string, opts ...Option) Declaration {
	d := Declaration{
		Module:  module,
		Topic:   topic,
		Version: DefaultVersion,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithDomain sets an explicit domain, bypassing the module-level default and
// the module-name fallback.
func WithDomain(domain string) Option {
	return func(d *Declaration) { d.Domain = domain }
}

// WithVersion overrides the version segment. An empty version omits the
// segment from the resolved name entirely.
func WithVersion(version string) Option {
	return func(d *Declaration) { d.Version = version }
}

// Internal marks the declaration as module-private.
func Internal() Option {
	return func(d *Declaration) { d.Internal = true }
}

// Pluralized requests slug pluralization at resolution time.
func Pluralized() Option {
	return func(d *Declaration) { d.Pluralize = true }
}

// WithDescription attaches human-readable documentation.
func WithDescription(description string) Option {
	return func(d *Declaration) { d.Description = description }
}

// Scope returns the scope segment this declaration resolves to.
func (d Declaration) Scope() string {
	if d.Internal {
		return ScopeInternal
	}
	return ScopePublic
}

// String returns the declaration's slug for easy debugging.
func (d Declaration) String() string {
	return d.Topic
}

// segmentPattern is the grammar shared by slugs, domains and versions. Dots
// are excluded so that splitting a resolved name on "." recovers the original
// segments.
var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Validate checks the declaration against the naming grammar. It returns a
// *DeclarationError describing the first offending field, or nil.
func (d Declaration) Validate() error {
	if d.Module == "" {
		return d.fieldError("Module", ReasonEmptyModule, "module name cannot be empty")
	}
	if d.Topic == "" {
		return d.fieldError("Topic", ReasonEmptyTopic, "topic slug cannot be empty")
	}
	if !segmentPattern.MatchString(d.Topic) {
		return d.fieldError("Topic", ReasonInvalidTopic,
			fmt.Sprintf("topic slug %q must be alphanumeric with dashes or underscores and contain no dots", d.Topic))
	}
	if d.Domain != "" && !segmentPattern.MatchString(d.Domain) {
		return d.fieldError("Domain", ReasonInvalidDomain,
			fmt.Sprintf("domain %q must be alphanumeric with dashes or underscores and contain no dots", d.Domain))
	}
	if d.Version != "" && !segmentPattern.MatchString(d.Version) {
		return d.fieldError("Version", ReasonInvalidVersion,
			fmt.Sprintf("version %q must be alphanumeric with dashes or underscores and contain no dots", d.Version))
	}
	return nil
}

func (d Declaration) fieldError(field string, reason Reason, message string) *DeclarationError {
	return &DeclarationError{
		Module:  d.Module,
		Topic:   d.Topic,
		Field:   field,
		Reason:  reason,
		Message: message,
	}
}
