package messaging

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry holds the declarations of all registered message types together
// with per-module default domains. It is safe for concurrent use.
//
// Registration itself only guards against duplicates; grammar validation
// happens fail-fast in NewEvent and again in ValidateAll, the startup pass
// run by bus wiring before any client object is constructed.
type Registry struct {
	mu      sync.RWMutex
	types   map[reflect.Type]Declaration
	domains map[string]string // module name -> default domain
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[reflect.Type]Declaration),
		domains: make(map[string]string),
	}
}

// Register associates a declaration with a message type. Registering the same
// type twice is an error.
func (r *Registry) Register(t reflect.Type, d Declaration) error {
	if t == nil {
		return &DeclarationError{
			Reason:  ReasonNotRegistered,
			Message: "cannot register a nil type",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[t]; ok {
		return &DeclarationError{
			Type:    t,
			Module:  existing.Module,
			Topic:   existing.Topic,
			Reason:  ReasonDuplicate,
			Message: fmt.Sprintf("type already registered with topic %q", existing.Topic),
		}
	}

	r.types[t] = d
	return nil
}

// Declaration returns the declaration registered for a type.
func (r *Registry) Declaration(t reflect.Type) (Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.types[t]
	return d, ok
}

// SetDefaultDomain declares the fallback domain for every declaration of the
// given module that carries no explicit domain. The domain must satisfy the
// segment grammar since it is written verbatim into wire names.
func (r *Registry) SetDefaultDomain(module, domain string) error {
	if module == "" {
		return &DeclarationError{
			Field:   "Module",
			Reason:  ReasonEmptyModule,
			Message: "module name cannot be empty",
		}
	}
	if !segmentPattern.MatchString(domain) {
		return &DeclarationError{
			Module:  module,
			Field:   "Domain",
			Reason:  ReasonInvalidDomain,
			Message: fmt.Sprintf("default domain %q must be alphanumeric with dashes or underscores and contain no dots", domain),
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.domains[module] = domain
	return nil
}

// DefaultDomain returns the module-level default domain, or "" when the
// module declared none.
func (r *Registry) DefaultDomain(module string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.domains[module]
}

// List returns all registered declarations ordered by module then topic.
func (r *Registry) List() []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decls := make([]Declaration, 0, len(r.types))
	for _, d := range r.types {
		decls = append(decls, d)
	}
	sortDeclarations(decls)
	return decls
}

// ListModule returns the declarations owned by a specific module, ordered by
// topic.
func (r *Registry) ListModule(module string) []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var decls []Declaration
	for _, d := range r.types {
		if d.Module == module {
			decls = append(decls, d)
		}
	}
	sortDeclarations(decls)
	return decls
}

// Modules returns the sorted names of all modules with registered
// declarations.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, d := range r.types {
		seen[d.Module] = true
	}
	modules := make([]string, 0, len(seen))
	for m := range seen {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules
}

// Count returns the number of registered declarations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.types)
}

// Reset removes all declarations and default domains (primarily for testing).
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.types = make(map[reflect.Type]Declaration)
	r.domains = make(map[string]string)
}

// ValidateAll runs the authoring validation pass over every registered
// declaration. It returns the joined errors of all violations, each naming
// the offending type, so operators can fix every declaration in one pass.
func (r *Registry) ValidateAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Walk types in a stable order so the joined error is deterministic.
	types := make([]reflect.Type, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })

	var errs []error
	for _, t := range types {
		if err := r.types[t].Validate(); err != nil {
			var declErr *DeclarationError
			if errors.As(err, &declErr) {
				declErr.Type = t
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sortDeclarations(decls []Declaration) {
	sort.Slice(decls, func(i, j int) bool {
		if decls[i].Module != decls[j].Module {
			return decls[i].Module < decls[j].Module
		}
		return decls[i].Topic < decls[j].Topic
	})
}

// TypeOf returns the reflect.Type of T without instantiating it, handling
// interface and pointer types uniformly.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Global default registry, mirroring the process-wide declaration set.
var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide default registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Package-level convenience functions that use the default registry.

// Register registers a declaration for T with the default registry.
func Register[T any](d Declaration) error {
	return Default().Register(TypeOf[T](), d)
}

// MustRegister registers a declaration for T and panics on error, for use in
// package-level variable initialization.
func MustRegister[T any](d Declaration) {
	if err := Register[T](d); err != nil {
		panic(fmt.Sprintf("messaging: failed to register %s: %v", TypeOf[T](), err))
	}
}

// SetDefaultDomain sets a module's default domain on the default registry.
func SetDefaultDomain(module, domain string) error {
	return Default().SetDefaultDomain(module, domain)
}

// MustSetDefaultDomain sets a module's default domain and panics on error,
// for use in package-level initialization.
func MustSetDefaultDomain(module, domain string) {
	if err := SetDefaultDomain(module, domain); err != nil {
		panic(fmt.Sprintf("messaging: failed to set default domain for %s: %v", module, err))
	}
}

// List returns all declarations from the default registry.
func List() []Declaration {
	return Default().List()
}

// ListModule returns a module's declarations from the default registry.
func ListModule(module string) []Declaration {
	return Default().ListModule(module)
}
