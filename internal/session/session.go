package session

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// State is the connection state of a Session.
type State int

const (
	// Disconnected is the initial state and the state after Close.
	Disconnected State = iota

	// Connected means publishes and subscribes are forwarded to the transport.
	Connected

	// Disturbed means a failure was observed and recovery is pending.
	Disturbed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Disturbed:
		return "disturbed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Defaults for Config.
const (
	DefaultReconnectAttempts = 5
	DefaultRetryUnit         = time.Second
)

// Config configures a Session.
type Config struct {
	Credentials Credentials

	// ReconnectAttempts is the number of attempts per Maintain call.
	ReconnectAttempts int

	// RetryUnit is the base delay; attempt i waits i*RetryUnit.
	RetryUnit time.Duration
}

// Logger defines the logging interface for the session.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Mirror receives a copy of every publication, connected or not.
type Mirror interface {
	Mirror(topic, payload string)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Session is the single shared bus connection.
type Session struct {
	transport Transport
	creds     Credentials
	attempts  int
	unit      time.Duration
	sleep     SleepFunc

	state State
	subs  []*Subscription

	mirror        Mirror
	logger        Logger
	onStateChange func(from, to State)
}

// New creates a disconnected Session over transport.
func New(transport Transport, cfg Config) *Session {
	attempts := cfg.ReconnectAttempts
	if attempts <= 0 {
		attempts = DefaultReconnectAttempts
	}
	unit := cfg.RetryUnit
	if unit <= 0 {
		unit = DefaultRetryUnit
	}
	return &Session{
		transport: transport,
		creds:     cfg.Credentials,
		attempts:  attempts,
		unit:      unit,
		sleep:     sleepContext,
		state:     Disconnected,
		logger:    noopLogger{},
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SetLogger sets the logger. A nil logger disables logging.
func (s *Session) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	s.logger = l
}

// SetMirror sets a sink receiving a copy of every publish.
func (s *Session) SetMirror(m Mirror) { s.mirror = m }

// SetSleep replaces the wait used between reconnect attempts.
func (s *Session) SetSleep(fn SleepFunc) {
	if fn == nil {
		fn = sleepContext
	}
	s.sleep = fn
}

// SetOnStateChange registers a callback for state transitions.
func (s *Session) SetOnStateChange(fn func(from, to State)) { s.onStateChange = fn }

// State returns the current connection state.
func (s *Session) State() State { return s.state }

// Credentials returns the session credentials.
func (s *Session) Credentials() Credentials { return s.creds }

// Subscriptions returns a copy of the durable subscription collection in
// registration order.
func (s *Session) Subscriptions() []*Subscription {
	out := make([]*Subscription, len(s.subs))
	copy(out, s.subs)
	return out
}

func (s *Session) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.logger.Info("session state changed", "from", from.String(), "to", to.String())
	if s.onStateChange != nil {
		s.onStateChange(from, to)
	}
}

func (s *Session) disturb(op string, err error) {
	s.logger.Warn("transport error", "op", op, "error", err)
	s.setState(Disturbed)
}

// Connect performs the transport handshake and issues every durable
// subscription. On failure the session becomes DISTURBED.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.establish(ctx, s.Subscriptions()); err != nil {
		s.setState(Disturbed)
		return fmt.Errorf("connecting to %s: %w", s.creds.Address(), err)
	}
	s.setState(Connected)
	return nil
}

// establish connects and re-issues subs in order.
func (s *Session) establish(ctx context.Context, subs []*Subscription) error {
	if err := s.transport.Connect(ctx, s.creds); err != nil {
		return err
	}
	for _, sub := range subs {
		if err := s.transport.Subscribe(sub.topic); err != nil {
			return fmt.Errorf("resubscribing %s: %w", sub.topic, err)
		}
	}
	return nil
}

// Restart rebuilds the connection: it captures the credentials and the
// full subscription collection, disconnects, reconnects and re-issues
// every captured subscription in its original order.
func (s *Session) Restart(ctx context.Context) error {
	subs := s.Subscriptions()
	s.transport.Disconnect()
	if err := s.establish(ctx, subs); err != nil {
		s.setState(Disturbed)
		return fmt.Errorf("restarting session: %w", err)
	}
	s.setState(Connected)
	return nil
}

// Maintain is called once per run-loop pass. It notices a silently lost
// link and, while DISTURBED, makes up to ReconnectAttempts rebuilds where
// attempt i first waits i*RetryUnit. It returns ErrReconnectExhausted when
// every attempt failed and the context error if ctx ends while waiting.
func (s *Session) Maintain(ctx context.Context) error {
	if s.state == Connected && !s.transport.IsConnected() {
		s.logger.Warn("connection lost")
		s.setState(Disturbed)
	}
	if s.state != Disturbed {
		return nil
	}

	for i := 1; i <= s.attempts; i++ {
		if err := s.sleep(ctx, time.Duration(i)*s.unit); err != nil {
			return err
		}
		err := s.Restart(ctx)
		if err == nil {
			s.logger.Info("reconnected", "attempt", i)
			return nil
		}
		s.logger.Warn("reconnect attempt failed", "attempt", i, "error", err)
	}
	return ErrReconnectExhausted
}

// Close disconnects and returns the session to DISCONNECTED.
func (s *Session) Close() {
	s.transport.Disconnect()
	s.setState(Disconnected)
}

// Publish sends payload on topic. It is forwarded only while CONNECTED;
// a transport error demotes the session and is not returned.
func (s *Session) Publish(topic, payload string) {
	if s.mirror != nil {
		s.mirror.Mirror(topic, payload)
	}
	if s.state != Connected {
		s.logger.Debug("publish dropped", "topic", topic, "state", s.state.String())
		return
	}
	if err := s.transport.Publish(topic, []byte(payload)); err != nil {
		s.disturb("publish", err)
	}
}

// Subscribe records sub in the durable collection. The transport is asked
// to subscribe only while CONNECTED; otherwise the next reconnect does it.
// Adding the same subscription twice is a no-op.
func (s *Session) Subscribe(sub *Subscription) {
	for _, existing := range s.subs {
		if existing == sub {
			return
		}
	}
	s.subs = append(s.subs, sub)
	if s.state != Connected {
		return
	}
	if err := s.transport.Subscribe(sub.topic); err != nil {
		s.disturb("subscribe", err)
	}
}

// Unsubscribe removes sub from the durable collection. The transport-level
// unsubscribe is issued only when no remaining subscription shares the
// topic.
func (s *Session) Unsubscribe(sub *Subscription) {
	idx := -1
	for i, existing := range s.subs {
		if existing == sub {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	s.subs = slices.Delete(s.subs, idx, idx+1)

	for _, other := range s.subs {
		if other.topic == sub.topic {
			return
		}
	}
	if s.state != Connected {
		return
	}
	if err := s.transport.Unsubscribe(sub.topic); err != nil {
		s.disturb("unsubscribe", err)
	}
}

// DispatchOne pulls at most one pending inbound message and delivers it to
// every subscription with an identical topic, in registration order. It
// reports whether a message was pulled.
func (s *Session) DispatchOne() bool {
	msg, ok := s.transport.Poll()
	if !ok {
		return false
	}

	payload := string(msg.Payload)
	delivered := 0
	for _, sub := range s.Subscriptions() {
		if sub.topic != msg.Topic {
			continue
		}
		delivered++
		s.deliver(sub, msg.Topic, payload)
	}
	if delivered == 0 {
		s.logger.Debug("no subscription for message", "topic", msg.Topic)
	}
	return true
}

func (s *Session) deliver(sub *Subscription, topic, payload string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("message handler panic recovered", "topic", topic, "panic", r)
		}
	}()
	if err := sub.deliver(topic, payload); err != nil {
		s.logger.Warn("message handler returned error", "topic", topic, "error", err)
	}
}
