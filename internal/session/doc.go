// Package session owns the node's single messaging-bus connection.
//
// A Session tracks the connection state machine, keeps the durable ordered
// collection of subscriptions across all skills, restores that collection
// after reconnects and dispatches inbound messages to every subscription
// whose topic matches exactly.
//
// # State machine
//
//	DISCONNECTED --Connect ok--> CONNECTED
//	DISCONNECTED --Connect fail--> DISTURBED
//	CONNECTED --transport error / lost link--> DISTURBED
//	DISTURBED --Maintain ok--> CONNECTED
//	any --Close--> DISCONNECTED
//
// A disturbed session is assumed recoverable: Maintain retries a bounded
// number of times per call and leaves the session DISTURBED for the next
// call when every attempt fails.
//
// # Concurrency
//
// A Session is not safe for concurrent use. It is driven from the node's
// run loop only; transports hand inbound messages over through Poll.
//
// # Usage
//
//	s := session.New(transport, session.Config{Credentials: creds})
//	_ = s.Connect(ctx)
//	s.Subscribe(session.NewSubscription("std/dev1/r/relay/switch", relay))
//	for {
//	    _ = s.Maintain(ctx)
//	    s.DispatchOne()
//	}
package session
