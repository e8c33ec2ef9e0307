package messaging

import (
	"errors"
	"fmt"
	"reflect"
)

// Event wraps a message type's declaration and provides the type-safe handle
// used by publish and subscribe helpers. Events are declared at package level
// by the module that owns them and register themselves with the default
// registry at init time.
type Event[T any] struct {
	decl Declaration
	typ  reflect.Type
}

// NewEvent creates a typed event declaration and registers it with the
// default registry. It validates the declaration immediately and panics on
// authoring errors: events are defined at package level, and a bad
// declaration is a configuration error that must stop startup.
func NewEvent[T any](module, topic string, opts ...Option) Event[T] {
	return NewEventIn[T](Default(), module, topic, opts...)
}

// NewEventIn registers the declaration with reg instead of the default
// registry, for callers that wire an isolated registry through their bus.
// Validation and panic semantics match NewEvent.
func NewEventIn[T any](reg *Registry, module, topic string, opts ...Option) Event[T] {
	d := NewDeclaration(module, topic, opts...)
	if err := d.Validate(); err != nil {
		var declErr *DeclarationError
		if errors.As(err, &declErr) {
			declErr.Type = TypeOf[T]()
		}
		panic(fmt.Sprintf("messaging: invalid declaration for %s: %v", TypeOf[T](), err))
	}
	if err := reg.Register(TypeOf[T](), d); err != nil {
		panic(fmt.Sprintf("messaging: failed to register %s: %v", TypeOf[T](), err))
	}

	return Event[T]{
		decl: d,
		typ:  TypeOf[T](),
	}
}

// Declaration returns the event's immutable declaration.
func (e Event[T]) Declaration() Declaration {
	return e.decl
}

// Type returns the reflected payload type the event was declared for.
func (e Event[T]) Type() reflect.Type {
	return e.typ
}

// TopicIn resolves the event's wire topic name for an environment using the
// default registry's module domain defaults. Primarily a convenience for
// tooling; hot paths should resolve through a Namer, which memoizes.
func (e Event[T]) TopicIn(env string) string {
	return TopicName(env, e.decl, Default().DefaultDomain(e.decl.Module))
}
