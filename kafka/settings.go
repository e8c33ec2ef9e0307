package kafka

import (
	"fmt"
	"strings"
	"time"
)

// DefaultConnectionName is the connection looked up when the configuration
// does not pick one explicitly via kafka.connectionStringName.
const DefaultConnectionName = "Messaging"

// Acks is the producer acknowledgement level.
type Acks int

const (
	// AcksNone fires and forgets; the broker sends no acknowledgement.
	AcksNone Acks = 0
	// AcksLeader waits for the partition leader only.
	AcksLeader Acks = 1
	// AcksAll waits for the full in-sync replica set.
	AcksAll Acks = -1
)

// String renders the canonical spelling used in configuration files.
func (a Acks) String() string {
	switch a {
	case AcksNone:
		return "None"
	case AcksLeader:
		return "Leader"
	case AcksAll:
		return "All"
	default:
		return fmt.Sprintf("Acks(%d)", int(a))
	}
}

// ParseAcks accepts the symbolic names as well as the Kafka wire numbers.
func ParseAcks(s string) (Acks, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "0":
		return AcksNone, nil
	case "leader", "1":
		return AcksLeader, nil
	case "all", "-1":
		return AcksAll, nil
	default:
		return 0, fmt.Errorf("invalid acks %q (expected None, Leader or All)", s)
	}
}

// OffsetReset controls where a consumer group without committed offsets
// starts reading.
type OffsetReset string

const (
	OffsetEarliest OffsetReset = "earliest"
	OffsetLatest   OffsetReset = "latest"
)

func ParseOffsetReset(s string) (OffsetReset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "earliest":
		return OffsetEarliest, nil
	case "latest":
		return OffsetLatest, nil
	default:
		return "", fmt.Errorf("invalid auto offset reset %q (expected earliest or latest)", s)
	}
}

// SecurityProtocol selects the broker listener flavor.
type SecurityProtocol string

const (
	ProtocolPlaintext     SecurityProtocol = "PLAINTEXT"
	ProtocolSsl           SecurityProtocol = "SSL"
	ProtocolSaslPlaintext SecurityProtocol = "SASL_PLAINTEXT"
	ProtocolSaslSsl       SecurityProtocol = "SASL_SSL"
)

// UsesTLS reports whether connections under this protocol are encrypted.
func (p SecurityProtocol) UsesTLS() bool {
	return p == ProtocolSsl || p == ProtocolSaslSsl
}

// UsesSASL reports whether connections under this protocol authenticate.
func (p SecurityProtocol) UsesSASL() bool {
	return p == ProtocolSaslPlaintext || p == ProtocolSaslSsl
}

// ParseSecurityProtocol is case-insensitive and tolerates both the Kafka
// spelling (SASL_SSL) and the compact one (SaslSsl).
func ParseSecurityProtocol(s string) (SecurityProtocol, error) {
	switch normalizeEnum(s) {
	case "plaintext":
		return ProtocolPlaintext, nil
	case "ssl":
		return ProtocolSsl, nil
	case "saslplaintext":
		return ProtocolSaslPlaintext, nil
	case "saslssl":
		return ProtocolSaslSsl, nil
	default:
		return "", fmt.Errorf("invalid security protocol %q (expected Plaintext, Ssl, SaslPlaintext or SaslSsl)", s)
	}
}

// SASLMechanism selects the SASL authentication mechanism.
type SASLMechanism string

const (
	SASLPlain       SASLMechanism = "PLAIN"
	SASLScramSha256 SASLMechanism = "SCRAM-SHA-256"
	SASLScramSha512 SASLMechanism = "SCRAM-SHA-512"
)

// ParseSASLMechanism is case-insensitive and tolerates both the Kafka
// spelling (SCRAM-SHA-256) and the compact one (ScramSha256).
func ParseSASLMechanism(s string) (SASLMechanism, error) {
	switch normalizeEnum(s) {
	case "plain":
		return SASLPlain, nil
	case "scramsha256":
		return SASLScramSha256, nil
	case "scramsha512":
		return SASLScramSha512, nil
	default:
		return "", fmt.Errorf("invalid SASL mechanism %q (expected Plain, ScramSha256 or ScramSha512)", s)
	}
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// ProducerSettings carries the producer overrides for one connection. Nil
// pointers mean the key was absent and the client default stands.
type ProducerSettings struct {
	EnableIdempotence     *bool `json:"enableIdempotence,omitempty"`
	MaxInFlight           *int  `json:"maxInFlight,omitempty"`
	Acks                  *Acks `json:"acks,omitempty"`
	MessageSendMaxRetries *int  `json:"messageSendMaxRetries,omitempty"`
}

// ConsumerSettings carries the consumer overrides for one connection. Nil
// pointers mean the key was absent and the client default stands.
type ConsumerSettings struct {
	SessionTimeout    *time.Duration `json:"sessionTimeout,omitempty"`
	HeartbeatInterval *time.Duration `json:"heartbeatInterval,omitempty"`
	MaxPollInterval   *time.Duration `json:"maxPollInterval,omitempty"`
	FetchMinBytes     *int32         `json:"fetchMinBytes,omitempty"`
	AutoOffsetReset   *OffsetReset   `json:"autoOffsetReset,omitempty"`
}

// SecuritySettings carries the transport security block. It is shared by
// producers and consumers of the connection.
type SecuritySettings struct {
	Protocol            *SecurityProtocol `json:"securityProtocol,omitempty"`
	Mechanism           *SASLMechanism    `json:"saslMechanism,omitempty"`
	Username            string            `json:"saslUsername,omitempty"`
	Password            string            `json:"-"`
	CALocation          string            `json:"sslCaLocation,omitempty"`
	CertificateLocation string            `json:"sslCertificateLocation,omitempty"`
	KeyLocation         string            `json:"sslKeyLocation,omitempty"`
}

// ConnectionSettings is the full typed view of one named Kafka connection.
type ConnectionSettings struct {
	Name             string   `json:"name"`
	BootstrapServers []string `json:"bootstrapServers,omitempty"`

	Producer ProducerSettings `json:"producer"`
	Consumer ConsumerSettings `json:"consumer"`
	Security SecuritySettings `json:"security"`
}

// NewConnectionSettings returns empty settings for the named connection;
// every knob is unset so the client defaults apply.
func NewConnectionSettings(name string) *ConnectionSettings {
	return &ConnectionSettings{Name: name}
}
