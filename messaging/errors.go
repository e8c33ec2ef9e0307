package messaging

import (
	"reflect"
	"strings"
)

// Reason classifies declaration errors so callers can branch on the failure
// without parsing messages.
type Reason string

const (
	ReasonEmptyModule    Reason = "empty_module"
	ReasonEmptyTopic     Reason = "empty_topic"
	ReasonInvalidTopic   Reason = "invalid_topic"
	ReasonInvalidDomain  Reason = "invalid_domain"
	ReasonInvalidVersion Reason = "invalid_version"
	ReasonDuplicate      Reason = "duplicate_registration"
	ReasonNotRegistered  Reason = "not_registered"
)

// DeclarationError represents a structured authoring error: a declaration
// that violates the naming grammar, a duplicate registration, or a lookup
// for a type that was never registered.
type DeclarationError struct {
	// Type is the message type the error refers to, when known.
	Type reflect.Type `json:"-"`

	Module  string `json:"module,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Field   string `json:"field,omitempty"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *DeclarationError) Error() string {
	var b strings.Builder
	b.WriteString("messaging: ")
	b.WriteString(e.Message)
	if e.Type != nil {
		b.WriteString(" (type ")
		b.WriteString(e.Type.String())
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is a *DeclarationError with the same Reason,
// making reason-level matching work with errors.Is.
func (e *DeclarationError) Is(target error) bool {
	t, ok := target.(*DeclarationError)
	return ok && t.Reason == e.Reason
}
