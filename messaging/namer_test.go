package messaging_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vgmello/momentum-go/messaging"
)

type shipmentDispatched struct {
	ShipmentID string `json:"shipmentId"`
}

func newTestRegistry(t *testing.T) *messaging.Registry {
	t.Helper()

	reg := messaging.NewRegistry()
	require.NoError(t, reg.Register(messaging.TypeOf[shipmentDispatched](),
		messaging.NewDeclaration("Logistics.Api", "shipment", messaging.Pluralized())))
	require.NoError(t, reg.SetDefaultDomain("Logistics.Api", "logistics"))
	return reg
}

func TestNamer_TopicForType(t *testing.T) {
	namer := messaging.NewNamer("Development", newTestRegistry(t))

	topic, err := namer.TopicForType(messaging.TypeOf[shipmentDispatched]())
	require.NoError(t, err)
	assert.Equal(t, "dev.logistics.public.shipments.v1", topic)
	assert.Equal(t, "Development", namer.Environment())
}

func TestNamer_TopicForUnwrapsPointers(t *testing.T) {
	namer := messaging.NewNamer("Development", newTestRegistry(t))

	byValue, err := namer.TopicFor(shipmentDispatched{ShipmentID: "s-1"})
	require.NoError(t, err)

	byPointer, err := namer.TopicFor(&shipmentDispatched{ShipmentID: "s-1"})
	require.NoError(t, err)

	assert.Equal(t, byValue, byPointer)
}

func TestNamer_UnregisteredType(t *testing.T) {
	type neverRegistered struct{}

	namer := messaging.NewNamer("Development", newTestRegistry(t))

	_, err := namer.TopicForType(messaging.TypeOf[neverRegistered]())
	require.Error(t, err)

	var declErr *messaging.DeclarationError
	require.True(t, errors.As(err, &declErr))
	assert.Equal(t, messaging.ReasonNotRegistered, declErr.Reason)
	assert.Contains(t, err.Error(), "neverRegistered")
}

func TestNamer_NilValue(t *testing.T) {
	namer := messaging.NewNamer("Development", newTestRegistry(t))

	_, err := namer.TopicFor(nil)
	assert.True(t, errors.Is(err, &messaging.DeclarationError{Reason: messaging.ReasonNotRegistered}))
}

func TestNamer_MemoizesPerType(t *testing.T) {
	reg := newTestRegistry(t)
	namer := messaging.NewNamer("Development", reg)

	first, err := namer.TopicForType(messaging.TypeOf[shipmentDispatched]())
	require.NoError(t, err)

	// The cached name survives registry mutation: resolution reads immutable
	// inputs fixed at first use.
	reg.Reset()

	second, err := namer.TopicForType(messaging.TypeOf[shipmentDispatched]())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNamer_ConcurrentResolution(t *testing.T) {
	namer := messaging.NewNamer("Production", newTestRegistry(t))

	const goroutines = 32
	results := make([]string, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			topic, err := namer.TopicFor(shipmentDispatched{})
			assert.NoError(t, err)
			results[i] = topic
		}(i)
	}
	wg.Wait()

	for _, topic := range results {
		assert.Equal(t, "prod.logistics.public.shipments.v1", topic)
	}
}

func TestNamer_TopicForDeclaration(t *testing.T) {
	namer := messaging.NewNamer("Staging", newTestRegistry(t))

	decl := messaging.NewDeclaration("Logistics.Api", "manifest")
	assert.Equal(t, "staging.logistics.public.manifest.v1", namer.TopicForDeclaration(decl))

	// Explicit domains bypass the module default.
	decl = messaging.NewDeclaration("Logistics.Api", "manifest",
		messaging.WithDomain("customs"))
	assert.Equal(t, "staging.customs.public.manifest.v1", namer.TopicForDeclaration(decl))
}

func TestNamer_DefaultsToGlobalRegistry(t *testing.T) {
	namer := messaging.NewNamer("Development", nil)
	require.NotNil(t, namer)

	_, err := namer.TopicForType(messaging.TypeOf[shipmentDispatched]())
	assert.Error(t, err, "type is only registered in the test registry, not the default one")
}
