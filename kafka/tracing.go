package kafka

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// tracerName scopes the spans produced by this package.
const tracerName = "momentum-kafka"

// TracingConfig holds the OpenTelemetry wiring for message flow telemetry.
type TracingConfig struct {
	Enabled        bool   // Whether tracing is enabled
	ServiceName    string // Service name attached to exported spans
	ServiceVersion string // Optional service version attribute
	ZipkinURL      string // Zipkin collector endpoint
}

// DefaultTracingConfig returns the disabled-by-default configuration pointed
// at the conventional local Zipkin collector.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:     false,
		ServiceName: "momentum-service",
		ZipkinURL:   "http://localhost:9411/api/v2/spans",
	}
}

// SetupTracing initializes OpenTelemetry with a Zipkin exporter so message
// flows through the bus can be traced. When cfg.Enabled is false it returns a
// no-op tracer, letting callers keep a single wiring path in every
// environment. The returned cleanup flushes and stops the provider.
func SetupTracing(ctx context.Context, cfg TracingConfig) (trace.Tracer, func(), error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider().Tracer(tracerName), func() {}, nil
	}

	exporter, err := zipkin.New(cfg.ZipkinURL)
	if err != nil {
		return nil, nil, err
	}

	attrs := []attribute.KeyValue{semconv.ServiceNameKey.String(cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(cfg.ServiceVersion))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(ctx); err != nil {
			panic(err)
		}
	}
	return tp.Tracer(tracerName), cleanup, nil
}

// TracingPublisher decorates a transport publisher so every outgoing message
// carries a publish span with the standard messaging attributes.
type TracingPublisher struct {
	publisher message.Publisher
	tracer    trace.Tracer
}

// NewTracingPublisher wraps pub with per-message publish spans.
func NewTracingPublisher(pub message.Publisher, tracer trace.Tracer) *TracingPublisher {
	return &TracingPublisher{publisher: pub, tracer: tracer}
}

// Publish starts one span per message, hands the batch to the wrapped
// publisher and marks every span failed when the transport reports an error.
func (p *TracingPublisher) Publish(topic string, messages ...*message.Message) error {
	spans := make([]trace.Span, 0, len(messages))
	for _, msg := range messages {
		spanCtx, span := p.tracer.Start(msg.Context(), "kafka.publish."+topic,
			trace.WithAttributes(messageAttributes("publish", topic, msg)...))
		msg.SetContext(spanCtx)
		spans = append(spans, span)
	}

	err := p.publisher.Publish(topic, messages...)
	for _, span := range spans {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
	return err
}

// Close closes the wrapped publisher.
func (p *TracingPublisher) Close() error {
	return p.publisher.Close()
}

// TracingHandler wraps a subscriber handler so every processed message gets a
// process span, recording handler failures before they reach the nack path.
// The span context is set on the message for downstream propagation.
func TracingHandler(tracer trace.Tracer, topic string, h message.NoPublishHandlerFunc) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		spanCtx, span := tracer.Start(msg.Context(), "kafka.process."+topic,
			trace.WithAttributes(messageAttributes("process", topic, msg)...))
		defer span.End()
		msg.SetContext(spanCtx)

		if err := h(msg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}
}

// Payload previews are capped so span attributes stay small.
const payloadPreviewLimit = 100

func messageAttributes(operation, topic string, msg *message.Message) []attribute.KeyValue {
	preview := string(msg.Payload)
	if len(preview) > payloadPreviewLimit {
		preview = preview[:payloadPreviewLimit] + "..."
	}
	return []attribute.KeyValue{
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.destination", topic),
		attribute.String("messaging.message_id", msg.UUID),
		attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
		attribute.String("messaging.message_payload_preview", preview),
	}
}
