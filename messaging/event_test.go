package messaging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vgmello/momentum-go/messaging"
)

type orderPlaced struct {
	OrderID string `json:"orderId"`
}

func TestNewEvent_RegistersDeclaration(t *testing.T) {
	t.Cleanup(func() { messaging.Default().Reset() })

	evt := messaging.NewEvent[orderPlaced]("Sales.Api", "order",
		messaging.Pluralized(),
		messaging.WithDescription("Raised when a customer places an order"))

	assert.Equal(t, messaging.TypeOf[orderPlaced](), evt.Type())
	assert.Equal(t, "order", evt.Declaration().Topic)
	assert.Equal(t, "Sales.Api", evt.Declaration().Module)
	assert.Equal(t, messaging.DefaultVersion, evt.Declaration().Version)

	decl, ok := messaging.Default().Declaration(messaging.TypeOf[orderPlaced]())
	require.True(t, ok)
	assert.Equal(t, evt.Declaration(), decl)
}

func TestNewEvent_ReregisterAfterReset(t *testing.T) {
	type invoiceVoided struct{}

	t.Cleanup(func() { messaging.Default().Reset() })

	messaging.NewEvent[invoiceVoided]("Sales.Api", "invoice-voided")
	messaging.Default().Reset()

	// A cleaned registry accepts the same declaration again, so repeated
	// test-binary passes over package-level events stay safe.
	assert.NotPanics(t, func() {
		messaging.NewEvent[invoiceVoided]("Sales.Api", "invoice-voided")
	})
}

func TestNewEvent_DuplicateTypePanics(t *testing.T) {
	type orderShipped struct {
		OrderID string `json:"orderId"`
	}

	t.Cleanup(func() { messaging.Default().Reset() })

	messaging.NewEvent[orderShipped]("Sales.Api", "order-shipped")

	assert.Panics(t, func() {
		messaging.NewEvent[orderShipped]("Sales.Api", "order-shipped")
	})
}

func TestNewEvent_InvalidDeclarationPanics(t *testing.T) {
	type badEvent struct{}

	assert.Panics(t, func() {
		messaging.NewEvent[badEvent]("Sales.Api", "")
	})

	assert.Panics(t, func() {
		messaging.NewEvent[badEvent]("Sales.Api", "dotted.slug")
	})
}

func TestNewEventIn_IsolatedRegistry(t *testing.T) {
	type quoteAccepted struct {
		QuoteID string `json:"quoteId"`
	}

	reg := messaging.NewRegistry()
	evt := messaging.NewEventIn[quoteAccepted](reg, "Sales.Api", "quote-accepted")

	decl, ok := reg.Declaration(messaging.TypeOf[quoteAccepted]())
	require.True(t, ok)
	assert.Equal(t, evt.Declaration(), decl)

	_, ok = messaging.Default().Declaration(messaging.TypeOf[quoteAccepted]())
	assert.False(t, ok, "isolated registration must not touch the default registry")

	assert.Panics(t, func() {
		messaging.NewEventIn[quoteAccepted](reg, "Sales.Api", "quote-accepted")
	})
}

func TestEvent_TopicIn(t *testing.T) {
	type orderCancelled struct {
		OrderID string `json:"orderId"`
	}

	t.Cleanup(func() { messaging.Default().Reset() })

	evt := messaging.NewEvent[orderCancelled]("Sales.Api", "order-cancelled",
		messaging.WithDomain("sales"))

	assert.Equal(t, "dev.sales.public.order-cancelled.v1", evt.TopicIn("Development"))
	assert.Equal(t, "prod.sales.public.order-cancelled.v1", evt.TopicIn("Production"))
}
