// Package messaging connects strongly-typed, in-process event declarations to
// wire-level Kafka topic names. It provides a compile-time safe declaration
// model, a central registry keyed by message type, and a deterministic naming
// grammar so that independently deployed producers and consumers compute
// matching topic names without coordination.
//
// The wire name of every declaration follows a fixed grammar:
//
//	{envPrefix}.{domain}.{scope}.{slug}[.{version}]
//
// where envPrefix is derived from the runtime environment name (Development
// becomes "dev", Production becomes "prod"), domain falls back from the
// explicit declaration to the module default to the first segment of the
// module name, scope is "internal" or "public", and the version segment is
// omitted when the declaration carries an empty version.
//
// Key Features:
//   - Compile-time safety through typed Event[T] declarations
//   - Deterministic, pure name resolution safe for concurrent use
//   - Centralized registry with per-module default domains
//   - Startup validation pass that fails fast on authoring errors
//
// Usage:
//
// Events are declared once, at package level, by the module that owns them:
//
//	type InvoiceCreated struct {
//		InvoiceID string `json:"invoiceId"`
//	}
//
//	var Invoices = messaging.NewEvent[InvoiceCreated]("Billing.Api", "invoice",
//		messaging.Pluralized(),
//		messaging.WithDescription("Raised when an invoice is issued"))
//
// At startup a Namer is bound to the runtime environment and resolves wire
// names per message type, memoizing the result:
//
//	namer := messaging.NewNamer("Development", nil)
//	topic, err := namer.TopicFor(InvoiceCreated{})
//	// topic == "dev.billing.public.invoices.v1"
package messaging
