package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgmello/momentum-go/kafka"
	"github.com/vgmello/momentum-go/messaging"
)

type orderPlaced struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

// newOrderEvent declares the example event against its own registry so tests
// leave the process-wide default registry untouched.
func newOrderEvent(t *testing.T) (*messaging.Registry, messaging.Event[orderPlaced]) {
	t.Helper()

	reg := messaging.NewRegistry()
	evt := messaging.NewEventIn[orderPlaced](reg, "Orders.Api", "order",
		messaging.Pluralized(),
		messaging.WithDescription("An order was accepted."))
	return reg, evt
}

func newChannelBus(t *testing.T, reg *messaging.Registry, opts ...kafka.Option) *kafka.Bus {
	t.Helper()

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 16,
	}, watermill.NopLogger{})

	opts = append([]kafka.Option{
		kafka.WithLogger(watermill.NopLogger{}),
		kafka.WithRegistry(reg),
		kafka.WithPublisher(pubsub),
		kafka.WithSubscriber(pubsub),
	}, opts...)

	b, err := kafka.NewBus(busViper(), billingService("Development"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestPublishSubscribe_RoundTrip(t *testing.T) {
	reg, evt := newOrderEvent(t)
	b := newChannelBus(t, reg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan orderPlaced, 1)
	err := kafka.Subscribe(ctx, b, evt, func(_ context.Context, payload orderPlaced) error {
		received <- payload
		return nil
	})
	require.NoError(t, err)

	want := orderPlaced{ID: "ord-123", Amount: 49.90}
	require.NoError(t, kafka.Publish(ctx, b, evt, want))

	select {
	case got := <-received:
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the payload")
	}
}

func TestPublish_UsesResolvedWireTopic(t *testing.T) {
	reg, evt := newOrderEvent(t)
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})

	b, err := kafka.NewBus(busViper(), billingService("Development"),
		kafka.WithLogger(watermill.NopLogger{}),
		kafka.WithRegistry(reg),
		kafka.WithPublisher(pubsub),
		kafka.WithSubscriber(pubsub))
	require.NoError(t, err)

	ctx := context.Background()
	messages, err := pubsub.Subscribe(ctx, "dev.orders.public.orders.v1")
	require.NoError(t, err)

	require.NoError(t, kafka.Publish(ctx, b, evt, orderPlaced{ID: "ord-7"}))

	select {
	case msg := <-messages:
		assert.JSONEq(t, `{"id":"ord-7","amount":0}`, string(msg.Payload))
		assert.NotEmpty(t, msg.UUID)
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("no message arrived on the resolved topic")
	}
}

func TestSubscribe_NackTriggersRedelivery(t *testing.T) {
	reg, evt := newOrderEvent(t)
	b := newChannelBus(t, reg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := make(chan int, 8)
	attempt := 0
	err := kafka.Subscribe(ctx, b, evt, func(_ context.Context, _ orderPlaced) error {
		attempt++
		attempts <- attempt
		if attempt == 1 {
			return errors.New("transient failure")
		}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, kafka.Publish(ctx, b, evt, orderPlaced{ID: "ord-55"}))

	deadline := time.After(5 * time.Second)
	for want := 1; want <= 2; want++ {
		select {
		case got := <-attempts:
			assert.Equal(t, want, got)
		case <-deadline:
			t.Fatalf("timed out waiting for delivery attempt %d", want)
		}
	}
}

func TestPublishSubscribe_UnregisteredType(t *testing.T) {
	_, evt := newOrderEvent(t)
	b := newChannelBus(t, messaging.NewRegistry())
	ctx := context.Background()

	err := kafka.Publish(ctx, b, evt, orderPlaced{})
	var declErr *messaging.DeclarationError
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, messaging.ReasonNotRegistered, declErr.Reason)

	err = kafka.Subscribe(ctx, b, evt, func(context.Context, orderPlaced) error { return nil })
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, messaging.ReasonNotRegistered, declErr.Reason)
}

func TestNewHandler_DecodesPayload(t *testing.T) {
	var got orderPlaced
	handler := kafka.NewHandler(func(_ context.Context, payload orderPlaced) error {
		got = payload
		return nil
	})

	require.NoError(t, handler(message.NewMessage("1", []byte(`{"id":"ord-9","amount":12.5}`))))
	assert.Equal(t, orderPlaced{ID: "ord-9", Amount: 12.5}, got)
}

func TestNewHandler_MalformedPayload(t *testing.T) {
	handler := kafka.NewHandler(func(_ context.Context, _ orderPlaced) error { return nil })

	err := handler(message.NewMessage("1", []byte("{")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
