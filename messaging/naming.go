package messaging

import "strings"

// EnvironmentPrefix maps a runtime environment name to the short namespace
// prefix used as the first segment of every wire topic name. Well-known
// environments are matched case-insensitively; anything else falls back to
// the lowercased environment name unchanged.
func EnvironmentPrefix(env string) string {
	switch {
	case strings.EqualFold(env, "Development"):
		return "dev"
	case strings.EqualFold(env, "Production"):
		return "prod"
	case strings.EqualFold(env, "Test"):
		return "test"
	case strings.EqualFold(env, "Staging"):
		return "staging"
	}
	return strings.ToLower(env)
}

// ResolveDomain produces the domain segment for a declaration through a
// three-level fallback chain: the explicit domain verbatim when non-empty,
// then the module-level default, then the first dot-separated segment of the
// module name, lowercased. The module name is never empty for a validated
// declaration, so resolution is total.
func ResolveDomain(explicit, moduleDefault, module string) string {
	if explicit != "" {
		return explicit
	}
	if moduleDefault != "" {
		return moduleDefault
	}
	first, _, _ := strings.Cut(module, ".")
	return strings.ToLower(first)
}

// Pluralize appends "s" to a slug. Irregular endings are deliberately not
// special-cased; declarations needing a different plural spell the slug out.
func Pluralize(slug string) string {
	return slug + "s"
}

// TopicName combines the environment prefix, resolved domain, scope, slug and
// version into the canonical wire topic name. It is a pure function of its
// inputs: identical inputs always yield an identical string. The declaration
// is not validated here; callers validate at registration time and fail fast.
func TopicName(env string, d Declaration, moduleDefault string) string {
	prefix := EnvironmentPrefix(env)
	domain := strings.ToLower(ResolveDomain(d.Domain, moduleDefault, d.Module))
	scope := d.Scope()

	slug := d.Topic
	if d.Pluralize {
		slug = Pluralize(slug)
	}

	var b strings.Builder
	b.Grow(len(prefix) + len(domain) + len(scope) + len(slug) + len(d.Version) + 4)
	b.WriteString(prefix)
	b.WriteByte('.')
	b.WriteString(domain)
	b.WriteByte('.')
	b.WriteString(scope)
	b.WriteByte('.')
	b.WriteString(slug)
	if d.Version != "" {
		b.WriteByte('.')
		b.WriteString(d.Version)
	}
	return b.String()
}
