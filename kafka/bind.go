package kafka

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BindConnectionSettings reads the typed settings for one named connection
// out of a viper tree. Keys follow the platform layout documented on the
// package; a key that is absent leaves the matching field nil, a key that is
// present but malformed returns an error naming it in full.
func BindConnectionSettings(v *viper.Viper, conn string) (*ConnectionSettings, error) {
	s := NewConnectionSettings(conn)

	if err := bindProducer(v, conn, &s.Producer); err != nil {
		return nil, err
	}
	if err := bindConsumer(v, conn, &s.Consumer); err != nil {
		return nil, err
	}
	if err := bindSecurity(v, &s.Security); err != nil {
		return nil, err
	}
	return s, nil
}

func bindProducer(v *viper.Viper, conn string, p *ProducerSettings) error {
	root := fmt.Sprintf("kafka.producer.%s.config.", conn)

	if err := bindValue(v, root+"enableIdempotence", &p.EnableIdempotence, parseBool); err != nil {
		return err
	}
	if err := bindValue(v, root+"maxInFlight", &p.MaxInFlight, parseInt); err != nil {
		return err
	}
	if err := bindValue(v, root+"acks", &p.Acks, ParseAcks); err != nil {
		return err
	}
	return bindValue(v, root+"messageSendMaxRetries", &p.MessageSendMaxRetries, parseInt)
}

func bindConsumer(v *viper.Viper, conn string, c *ConsumerSettings) error {
	root := fmt.Sprintf("kafka.consumer.%s.config.", conn)

	if err := bindValue(v, root+"sessionTimeoutMs", &c.SessionTimeout, parseMillis); err != nil {
		return err
	}
	if err := bindValue(v, root+"heartbeatIntervalMs", &c.HeartbeatInterval, parseMillis); err != nil {
		return err
	}
	if err := bindValue(v, root+"maxPollIntervalMs", &c.MaxPollInterval, parseMillis); err != nil {
		return err
	}
	if err := bindValue(v, root+"fetchMinBytes", &c.FetchMinBytes, parseInt32); err != nil {
		return err
	}
	return bindValue(v, root+"autoOffsetReset", &c.AutoOffsetReset, ParseOffsetReset)
}

func bindSecurity(v *viper.Viper, s *SecuritySettings) error {
	const root = "kafka.security."

	if err := bindValue(v, root+"securityProtocol", &s.Protocol, ParseSecurityProtocol); err != nil {
		return err
	}
	if err := bindValue(v, root+"saslMechanism", &s.Mechanism, ParseSASLMechanism); err != nil {
		return err
	}

	s.Username = v.GetString(root + "saslUsername")
	s.Password = v.GetString(root + "saslPassword")
	s.CALocation = v.GetString(root + "sslCaLocation")
	s.CertificateLocation = v.GetString(root + "sslCertificateLocation")
	s.KeyLocation = v.GetString(root + "sslKeyLocation")
	return nil
}

// bindValue fills dst from the key when set, converting the raw string form
// so that a value viper would silently coerce to zero becomes an error.
func bindValue[T any](v *viper.Viper, key string, dst **T, parse func(string) (T, error)) error {
	if !v.IsSet(key) {
		return nil
	}
	parsed, err := parse(v.GetString(key))
	if err != nil {
		return fmt.Errorf("kafka: parse %s: %w", key, err)
	}
	*dst = &parsed
	return nil
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	return int32(n), err
}

func parseMillis(s string) (time.Duration, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative interval %dms", n)
	}
	return time.Duration(n) * time.Millisecond, nil
}
