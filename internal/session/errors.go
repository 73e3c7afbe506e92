package session

import "errors"

// Error classes surfaced by transports. The session treats both as
// "disturbed"; they exist so logs and callers can tell them apart.
var (
	// ErrTransport covers network and I/O failures.
	ErrTransport = errors.New("session: transport error")

	// ErrProtocol covers broker refusals and malformed exchanges.
	ErrProtocol = errors.New("session: protocol error")

	// ErrReconnectExhausted is returned by Maintain when every attempt failed.
	ErrReconnectExhausted = errors.New("session: reconnect attempts exhausted")
)
