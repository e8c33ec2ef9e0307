package messaging

import (
	"fmt"
	"reflect"
	"sync"
)

// Namer resolves wire topic names for message types in a fixed environment.
// Resolution is pure, so results are memoized per type in a lazily populated
// cache; concurrent duplicate population computes the same value and is
// harmless.
type Namer struct {
	env   string
	reg   *Registry
	cache sync.Map // reflect.Type -> string
}

// NewNamer binds a namer to an environment and registry. A nil registry
// selects the process-wide default.
func NewNamer(env string, reg *Registry) *Namer {
	if reg == nil {
		reg = Default()
	}
	return &Namer{env: env, reg: reg}
}

// Environment returns the environment name the namer was bound to.
func (n *Namer) Environment() string {
	return n.env
}

// TopicFor resolves the wire topic name for a message value. Pointers are
// unwrapped so that a *T value resolves to the declaration registered for T.
func (n *Namer) TopicFor(v any) (string, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return "", &DeclarationError{
			Reason:  ReasonNotRegistered,
			Message: "cannot resolve a topic for a nil value",
		}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return n.TopicForType(t)
}

// TopicForType resolves the wire topic name for a message type, consulting
// the cache first. Unregistered types yield a *DeclarationError with
// ReasonNotRegistered.
func (n *Namer) TopicForType(t reflect.Type) (string, error) {
	if cached, ok := n.cache.Load(t); ok {
		return cached.(string), nil
	}

	d, ok := n.reg.Declaration(t)
	if !ok {
		return "", &DeclarationError{
			Type:    t,
			Reason:  ReasonNotRegistered,
			Message: fmt.Sprintf("no declaration registered for %s", t),
		}
	}

	name := n.TopicForDeclaration(d)
	n.cache.Store(t, name)
	return name, nil
}

// TopicForDeclaration resolves a declaration directly, without the type cache.
// Used by tooling that walks the registry rather than message values.
func (n *Namer) TopicForDeclaration(d Declaration) string {
	return TopicName(n.env, d, n.reg.DefaultDomain(d.Module))
}
