package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/vgmello/momentum-go/messaging"
)

// Publish resolves the wire topic for the declared event and publishes the
// JSON-encoded payload through the bus.
func Publish[T any](ctx context.Context, b *Bus, event messaging.Event[T], payload T) error {
	topic, err := b.Namer().TopicForType(event.Type())
	if err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("kafka: marshal payload for %s: %w", topic, err)
	}

	pub, err := b.Publisher()
	if err != nil {
		return err
	}
	if b.tracer != nil {
		pub = NewTracingPublisher(pub, b.tracer)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.SetContext(ctx)
	return pub.Publish(topic, msg)
}

// NewHandler adapts a typed handler to the transport message signature,
// decoding the JSON payload into T.
func NewHandler[T any](fn func(ctx context.Context, payload T) error) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("kafka: unmarshal %T payload: %w", payload, err)
		}
		return fn(msg.Context(), payload)
	}
}

// Subscribe consumes the declared event's topic on the bus consumer group
// and feeds decoded payloads to fn. Messages are acked on success and nacked
// for redelivery when fn fails. The loop ends when ctx is canceled or the
// subscriber closes.
func Subscribe[T any](ctx context.Context, b *Bus, event messaging.Event[T], fn func(ctx context.Context, payload T) error) error {
	topic, err := b.Namer().TopicForType(event.Type())
	if err != nil {
		return err
	}

	sub, err := b.Subscriber()
	if err != nil {
		return err
	}

	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("kafka: subscribe to %s: %w", topic, err)
	}

	handler := NewHandler(fn)
	if b.tracer != nil {
		handler = TracingHandler(b.tracer, topic, handler)
	}
	logger := b.logger.With(watermill.LogFields{"topic": topic})

	go func() {
		for msg := range messages {
			if err := handler(msg); err != nil {
				logger.Error("message handler failed", err, watermill.LogFields{"message_id": msg.UUID})
				msg.Nack()
				continue
			}
			msg.Ack()
		}
		logger.Debug("subscription closed", nil)
	}()

	return nil
}
