package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/IBM/sarama"
	"github.com/xdg-go/scram"
)

// SaramaConfig materializes the bound settings into a native client
// configuration. Fields without an override keep sarama's defaults. The
// result is validated before it is returned so contradictory settings fail
// here instead of on the first broker round trip.
func (s *ConnectionSettings) SaramaConfig() (*sarama.Config, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V1_0_0_0

	// watermill publishes through a SyncProducer and drains consumer errors;
	// both paths depend on these flags.
	cfg.Producer.Return.Successes = true
	cfg.Consumer.Return.Errors = true

	if err := s.Security.apply(cfg); err != nil {
		return nil, fmt.Errorf("kafka: security settings for connection %q: %w", s.Name, err)
	}
	s.Producer.apply(cfg)
	s.Consumer.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka: settings for connection %q: %w", s.Name, err)
	}
	return cfg, nil
}

func (p ProducerSettings) apply(cfg *sarama.Config) {
	if p.EnableIdempotence != nil {
		cfg.Producer.Idempotent = *p.EnableIdempotence
	}
	if p.MaxInFlight != nil {
		cfg.Net.MaxOpenRequests = *p.MaxInFlight
	}
	if p.Acks != nil {
		cfg.Producer.RequiredAcks = sarama.RequiredAcks(*p.Acks)
	}
	if p.MessageSendMaxRetries != nil {
		cfg.Producer.Retry.Max = *p.MessageSendMaxRetries
	}

	// An idempotent producer needs acks=all and one in-flight request. Fill
	// those in when the keys were absent; explicit conflicting values are
	// left alone so Validate rejects them.
	if cfg.Producer.Idempotent {
		if p.Acks == nil {
			cfg.Producer.RequiredAcks = sarama.WaitForAll
		}
		if p.MaxInFlight == nil {
			cfg.Net.MaxOpenRequests = 1
		}
	}
}

func (c ConsumerSettings) apply(cfg *sarama.Config) {
	if c.SessionTimeout != nil {
		cfg.Consumer.Group.Session.Timeout = *c.SessionTimeout
	}
	if c.HeartbeatInterval != nil {
		cfg.Consumer.Group.Heartbeat.Interval = *c.HeartbeatInterval
	}
	if c.MaxPollInterval != nil {
		// Closest client analog of the poll interval: a member that stalls
		// past the rebalance timeout is evicted from the group.
		cfg.Consumer.Group.Rebalance.Timeout = *c.MaxPollInterval
	}
	if c.FetchMinBytes != nil {
		cfg.Consumer.Fetch.Min = *c.FetchMinBytes
	}
	if c.AutoOffsetReset != nil {
		switch *c.AutoOffsetReset {
		case OffsetEarliest:
			cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
		case OffsetLatest:
			cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
		}
	}
}

func (s SecuritySettings) apply(cfg *sarama.Config) error {
	protocol := ProtocolPlaintext
	if s.Protocol != nil {
		protocol = *s.Protocol
	}

	if protocol.UsesTLS() {
		tc, err := s.tlsConfig()
		if err != nil {
			return err
		}
		cfg.Net.TLS.Enable = true
		cfg.Net.TLS.Config = tc
	}

	if protocol.UsesSASL() {
		mechanism := SASLPlain
		if s.Mechanism != nil {
			mechanism = *s.Mechanism
		}

		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.Handshake = true
		cfg.Net.SASL.User = s.Username
		cfg.Net.SASL.Password = s.Password

		switch mechanism {
		case SASLPlain:
			cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		case SASLScramSha256:
			cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
			cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return newScramClient(scram.SHA256)
			}
		case SASLScramSha512:
			cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
			cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return newScramClient(scram.SHA512)
			}
		default:
			return fmt.Errorf("unsupported SASL mechanism %q", mechanism)
		}
	}

	return nil
}

// tlsConfig builds the TLS client configuration from the certificate
// locations. With no locations set the system trust store is used.
func (s SecuritySettings) tlsConfig() (*tls.Config, error) {
	tc := &tls.Config{MinVersion: tls.VersionTLS12}

	if s.CALocation != "" {
		pem, err := os.ReadFile(s.CALocation)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", s.CALocation)
		}
		tc.RootCAs = pool
	}

	if s.CertificateLocation != "" || s.KeyLocation != "" {
		if s.CertificateLocation == "" || s.KeyLocation == "" {
			return nil, fmt.Errorf("sslCertificateLocation and sslKeyLocation must both be set for client authentication")
		}
		cert, err := tls.LoadX509KeyPair(s.CertificateLocation, s.KeyLocation)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}

	return tc, nil
}
