package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-node/internal/session"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for a connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultAckTimeout is the maximum time to wait for a publish or
	// subscribe acknowledgment.
	defaultAckTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// defaultInboxSize bounds the number of queued inbound messages.
	defaultInboxSize = 64

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// Presence payloads on the status topic.
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Options tune a Transport. Zero values take defaults.
type Options struct {
	// QoS for publishes and subscriptions (0..2).
	QoS byte

	// StatusTopic carries the retained online/offline presence. Empty
	// disables both the will and the birth message.
	StatusTopic string

	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	AckTimeout     time.Duration
	InboxSize      int
}

func (o Options) withDefaults() Options {
	if o.QoS > maxQoS {
		o.QoS = maxQoS
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = defaultKeepAlive
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.AckTimeout <= 0 {
		o.AckTimeout = defaultAckTimeout
	}
	if o.InboxSize <= 0 {
		o.InboxSize = defaultInboxSize
	}
	return o
}

// brokerURL returns tcp:// or ssl:// for creds.
func brokerURL(creds session.Credentials) string {
	scheme := "tcp"
	if creds.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s", scheme, creds.Address())
}

// buildClientOptions creates paho options for one connection attempt.
//
// Reconnection is owned by the session, so paho's auto-reconnect and
// connect-retry are both off. Sessions are clean; the session resubscribes
// after every connect.
func buildClientOptions(creds session.Credentials, o Options) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(brokerURL(creds))
	opts.SetClientID(creds.ClientID)

	if creds.Username != "" {
		opts.SetUsername(creds.Username)
		opts.SetPassword(creds.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(o.ConnectTimeout)
	opts.SetKeepAlive(o.KeepAlive)

	if creds.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	if o.StatusTopic != "" {
		// Retained so late subscribers see the last known presence.
		opts.SetWill(o.StatusTopic, PayloadOffline, o.QoS, true)
	}
	return opts
}
