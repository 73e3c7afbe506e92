package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-node/internal/session"
)

// Transport implements session.Transport on paho.mqtt.golang.
//
// Thread Safety:
//   - Connect, Disconnect, Publish, Subscribe and Unsubscribe are called
//     from the scheduler goroutine.
//   - paho delivers inbound messages on its own goroutines; they only
//     touch the inbox channel.
type Transport struct {
	opts Options

	mu     sync.RWMutex
	client pahomqtt.Client

	inbox   chan session.Message
	dropped uint64
	dropMu  sync.Mutex

	// logger for drops and connection loss (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex

	// newClient is replaced in tests.
	newClient func(*pahomqtt.ClientOptions) pahomqtt.Client
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New returns a disconnected Transport.
func New(opts Options) *Transport {
	opts = opts.withDefaults()
	return &Transport{
		opts:      opts,
		inbox:     make(chan session.Message, opts.InboxSize),
		newClient: pahomqtt.NewClient,
	}
}

// SetLogger sets a logger for drop and connection-loss reporting.
func (t *Transport) SetLogger(logger Logger) {
	t.loggerMu.Lock()
	t.logger = logger
	t.loggerMu.Unlock()
}

func (t *Transport) getLogger() Logger {
	t.loggerMu.RLock()
	defer t.loggerMu.RUnlock()
	return t.logger
}

// Connect opens a fresh broker connection and announces presence.
// Any previous connection is torn down first.
func (t *Transport) Connect(ctx context.Context, creds session.Credentials) error {
	t.closeClient(false)

	opts := buildClientOptions(creds, t.opts)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		if logger := t.getLogger(); logger != nil {
			logger.Warn("MQTT connection lost", "broker", creds.Address(), "error", err)
		}
	})

	client := t.newClient(opts)
	if err := wait(ctx, client.Connect(), t.opts.ConnectTimeout); err != nil {
		// Abandon the attempt so a late handshake cannot race the next one.
		client.Disconnect(0)
		return fmt.Errorf("%w: %w: %s: %w", session.ErrTransport, ErrConnectionFailed, creds.Address(), err)
	}

	t.mu.Lock()
	t.client = client
	t.mu.Unlock()

	if t.opts.StatusTopic != "" {
		if err := t.publish(t.opts.StatusTopic, []byte(PayloadOnline), true); err != nil {
			return err
		}
	}

	if logger := t.getLogger(); logger != nil {
		logger.Info("MQTT connected", "broker", creds.Address(), "client_id", creds.ClientID)
	}
	return nil
}

// Disconnect announces a graceful offline and closes the connection.
func (t *Transport) Disconnect() {
	t.closeClient(true)
}

func (t *Transport) closeClient(graceful bool) {
	t.mu.Lock()
	client := t.client
	t.client = nil
	t.mu.Unlock()
	if client == nil {
		return
	}

	if graceful && t.opts.StatusTopic != "" && client.IsConnected() {
		token := client.Publish(t.opts.StatusTopic, t.opts.QoS, true, PayloadOffline)
		token.WaitTimeout(t.opts.AckTimeout)
	}
	client.Disconnect(defaultDisconnectQuiesce)
}

// IsConnected reports whether the broker link is up.
func (t *Transport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.client != nil && t.client.IsConnected()
}

// current returns the live client or ErrNotConnected.
func (t *Transport) current() (pahomqtt.Client, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.client == nil || !t.client.IsConnected() {
		return nil, fmt.Errorf("%w: %w", session.ErrTransport, ErrNotConnected)
	}
	return t.client, nil
}

// Dropped returns how many inbound messages were discarded because the
// inbox was full.
func (t *Transport) Dropped() uint64 {
	t.dropMu.Lock()
	defer t.dropMu.Unlock()
	return t.dropped
}

// wait blocks until token completes, ctx ends or timeout elapses.
func wait(ctx context.Context, token pahomqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
}
