// Package kafka binds hierarchical runtime configuration into native Kafka
// client settings and wires them, together with the messaging name resolver,
// into a watermill-based bus.
//
// Configuration is read from a viper tree. Connection strings live at the
// top level and everything else under the "kafka" platform root:
//
//	connectionStrings:
//	  Messaging: "broker-1:9092,broker-2:9092"
//	kafka:
//	  autoProvision: true
//	  producer:
//	    Messaging:
//	      config:
//	        enableIdempotence: true
//	        acks: All
//	  consumer:
//	    Messaging:
//	      config:
//	        sessionTimeoutMs: 45000
//	        autoOffsetReset: earliest
//	  security:
//	    securityProtocol: SaslSsl
//	    saslMechanism: ScramSha256
//
// Absent keys keep the Kafka client library defaults; malformed values are
// startup errors naming the offending key, never silently defaulted. The
// required bootstrap connection string is fatal when missing: the process
// must not start serving messages half-configured.
package kafka
