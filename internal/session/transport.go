package session

import (
	"context"
	"strconv"
)

// Credentials identify the node to the broker. They are fixed for the
// lifetime of a Session.
type Credentials struct {
	ClientID string
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

// Address returns host:port.
func (c Credentials) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Message is one inbound (topic, payload) pair.
type Message struct {
	Topic   string
	Payload []byte
}

// Transport is the physical bus driver consumed by a Session.
//
// Errors should wrap ErrTransport or ErrProtocol. Poll must never block.
type Transport interface {
	Connect(ctx context.Context, creds Credentials) error
	Disconnect()
	Publish(topic string, payload []byte) error
	Subscribe(topic string) error
	Unsubscribe(topic string) error
	Poll() (Message, bool)
	IsConnected() bool
}
