package kafka

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/vgmello/momentum-go/config"
	"github.com/vgmello/momentum-go/messaging"
)

const (
	keyConnectionStringName = "kafka.connectionStringName"
	keyAutoProvision        = "kafka.autoProvision"
)

// MissingConnectionError reports a bootstrap connection string the
// configuration never defines. It is fatal on purpose: a bus without brokers
// has nothing to degrade to.
type MissingConnectionError struct {
	Name string `json:"name"`
}

func (e *MissingConnectionError) Error() string {
	return fmt.Sprintf("kafka: connection string %q is not configured (set connectionStrings.%s or CONNECTIONSTRINGS_%s)",
		e.Name, e.Name, strings.ToUpper(e.Name))
}

// Bus owns the settings, topic resolution and transport endpoints for one
// named Kafka connection. Construction never dials a broker; the publisher
// and subscriber connect on first use.
type Bus struct {
	service       config.Service
	conn          string
	brokers       []string
	groupID       string
	autoProvision bool

	settings *ConnectionSettings
	sarama   *sarama.Config
	registry *messaging.Registry
	namer    *messaging.Namer
	logger   watermill.LoggerAdapter
	tracer   trace.Tracer

	mu  sync.Mutex
	pub message.Publisher
	sub message.Subscriber
}

// Option adjusts bus construction.
type Option func(*Bus)

// WithLogger replaces the default slog-backed transport logger.
func WithLogger(logger watermill.LoggerAdapter) Option {
	return func(b *Bus) { b.logger = logger }
}

// WithRegistry resolves topics against the given registry instead of the
// process-wide default.
func WithRegistry(reg *messaging.Registry) Option {
	return func(b *Bus) { b.registry = reg }
}

// WithConnectionName overrides both the configured kafka.connectionStringName
// and the built-in default.
func WithConnectionName(name string) Option {
	return func(b *Bus) { b.conn = name }
}

// WithTracing instruments the bus with OpenTelemetry: broker endpoints are
// built with otelsarama wrapping and the typed publish and subscribe helpers
// surround each message with spans from the given tracer. SetupTracing
// produces a suitable tracer.
func WithTracing(tracer trace.Tracer) Option {
	return func(b *Bus) { b.tracer = tracer }
}

// WithPublisher injects a ready publisher, bypassing the broker-backed one.
func WithPublisher(pub message.Publisher) Option {
	return func(b *Bus) { b.pub = pub }
}

// WithSubscriber injects a ready subscriber, bypassing the broker-backed one.
func WithSubscriber(sub message.Subscriber) Option {
	return func(b *Bus) { b.sub = sub }
}

// NewBus resolves the connection named by the configuration, materializes
// its client settings and validates every registered declaration. Any
// problem is an error here, before a single broker connection is attempted.
func NewBus(v *viper.Viper, svc config.Service, opts ...Option) (*Bus, error) {
	if v == nil {
		return nil, errors.New("kafka: nil configuration")
	}
	if svc.Name == "" {
		return nil, errors.New("kafka: service name is required for client and consumer group identity")
	}

	b := &Bus{
		service:  svc,
		registry: messaging.Default(),
		logger:   NewSlogLogger(nil),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.conn == "" {
		b.conn = strings.TrimSpace(v.GetString(keyConnectionStringName))
	}
	if b.conn == "" {
		b.conn = DefaultConnectionName
	}

	b.brokers = splitBrokers(v.GetString("connectionStrings." + b.conn))
	if len(b.brokers) == 0 {
		return nil, &MissingConnectionError{Name: b.conn}
	}

	settings, err := BindConnectionSettings(v, b.conn)
	if err != nil {
		return nil, err
	}
	settings.BootstrapServers = b.Brokers()
	b.settings = settings

	cfg, err := settings.SaramaConfig()
	if err != nil {
		return nil, err
	}

	b.autoProvision = developmentLike(svc.Environment)
	if v.IsSet(keyAutoProvision) {
		override, err := parseBool(v.GetString(keyAutoProvision))
		if err != nil {
			return nil, fmt.Errorf("kafka: parse %s: %w", keyAutoProvision, err)
		}
		b.autoProvision = override
	}

	cfg.ClientID = svc.Name
	cfg.Metadata.AllowAutoTopicCreation = b.autoProvision
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka: client settings for service %q: %w", svc.Name, err)
	}
	b.sarama = cfg

	// Authoring mistakes in event declarations stop the process here, not on
	// the first publish.
	if err := b.registry.ValidateAll(); err != nil {
		return nil, err
	}

	b.groupID = svc.Name + "-" + messaging.EnvironmentPrefix(svc.Environment)
	b.namer = messaging.NewNamer(svc.Environment, b.registry)

	b.logger.Info("kafka bus configured", watermill.LogFields{
		"connection":     b.conn,
		"brokers":        strings.Join(b.brokers, ","),
		"consumer_group": b.groupID,
		"auto_provision": b.autoProvision,
		"tracing":        b.tracer != nil,
	})

	return b, nil
}

// ConnectionName returns the resolved connection string name.
func (b *Bus) ConnectionName() string { return b.conn }

// Brokers returns a copy of the bootstrap broker list.
func (b *Bus) Brokers() []string {
	return append([]string(nil), b.brokers...)
}

// GroupID returns the consumer group identity, serviceName-envPrefix.
func (b *Bus) GroupID() string { return b.groupID }

// AutoProvision reports whether missing topics are created on first use.
func (b *Bus) AutoProvision() bool { return b.autoProvision }

// Environment returns the environment the bus resolves topics for.
func (b *Bus) Environment() string { return b.service.Environment }

// Namer returns the topic resolver pinned to the service environment.
func (b *Bus) Namer() *messaging.Namer { return b.namer }

// Settings returns the typed settings bound for this connection.
func (b *Bus) Settings() *ConnectionSettings { return b.settings }

// SaramaConfig returns the materialized client configuration.
func (b *Bus) SaramaConfig() *sarama.Config { return b.sarama }

// PublisherConfig is the transport publisher configuration the bus wires.
func (b *Bus) PublisherConfig() wkafka.PublisherConfig {
	return wkafka.PublisherConfig{
		Brokers:               b.Brokers(),
		Marshaler:             wkafka.DefaultMarshaler{},
		OverwriteSaramaConfig: b.sarama,
		OTELEnabled:           b.tracer != nil,
	}
}

// SubscriberConfig is the transport subscriber configuration the bus wires.
// Topic auto-provisioning, when enabled, creates single-partition topics;
// anything bigger belongs to real provisioning.
func (b *Bus) SubscriberConfig() wkafka.SubscriberConfig {
	cfg := wkafka.SubscriberConfig{
		Brokers:               b.Brokers(),
		Unmarshaler:           wkafka.DefaultMarshaler{},
		OverwriteSaramaConfig: b.sarama,
		ConsumerGroup:         b.groupID,
		OTELEnabled:           b.tracer != nil,
	}
	if b.autoProvision {
		cfg.InitializeTopicDetails = &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	return cfg
}

// Publisher returns the shared publisher, connecting on first use.
func (b *Bus) Publisher() (message.Publisher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pub != nil {
		return b.pub, nil
	}
	pub, err := wkafka.NewPublisher(b.PublisherConfig(), b.logger)
	if err != nil {
		return nil, fmt.Errorf("kafka: create publisher for connection %q: %w", b.conn, err)
	}
	b.pub = pub
	return b.pub, nil
}

// Subscriber returns the shared subscriber, connecting on first use.
func (b *Bus) Subscriber() (message.Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		return b.sub, nil
	}
	sub, err := wkafka.NewSubscriber(b.SubscriberConfig(), b.logger)
	if err != nil {
		return nil, fmt.Errorf("kafka: create subscriber for connection %q: %w", b.conn, err)
	}
	b.sub = sub
	return b.sub, nil
}

// Close shuts down whichever endpoints were opened.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.pub != nil {
		errs = append(errs, b.pub.Close())
		b.pub = nil
	}
	if b.sub != nil {
		errs = append(errs, b.sub.Close())
		b.sub = nil
	}
	return errors.Join(errs...)
}

// developmentLike reports whether the environment should default to topic
// auto-provisioning. Production-like environments require topics to exist
// ahead of time.
func developmentLike(env string) bool {
	prefix := messaging.EnvironmentPrefix(env)
	return prefix == "dev" || prefix == "test"
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
