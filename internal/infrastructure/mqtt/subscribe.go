package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-node/internal/session"
)

// subackFailure is the SUBACK return code for a refused subscription.
const subackFailure = 0x80

// Subscribe registers topic with the broker. Matching messages are queued
// for Poll.
func (t *Transport) Subscribe(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: %w", session.ErrProtocol, ErrInvalidTopic)
	}
	client, err := t.current()
	if err != nil {
		return err
	}

	token := client.Subscribe(topic, t.opts.QoS, t.enqueue)
	if !token.WaitTimeout(t.opts.AckTimeout) {
		return fmt.Errorf("%w: %w: %s: %w", session.ErrTransport, ErrSubscribeFailed, topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w: %s: %w", session.ErrTransport, ErrSubscribeFailed, topic, err)
	}
	if st, ok := token.(*pahomqtt.SubscribeToken); ok {
		if code, found := st.Result()[topic]; found && code == subackFailure {
			return fmt.Errorf("%w: %w: %s: refused by broker", session.ErrProtocol, ErrSubscribeFailed, topic)
		}
	}
	return nil
}

// Unsubscribe removes topic from the broker.
func (t *Transport) Unsubscribe(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: %w", session.ErrProtocol, ErrInvalidTopic)
	}
	client, err := t.current()
	if err != nil {
		return err
	}

	token := client.Unsubscribe(topic)
	if !token.WaitTimeout(t.opts.AckTimeout) {
		return fmt.Errorf("%w: %w: %s: %w", session.ErrTransport, ErrUnsubscribeFailed, topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w: %s: %w", session.ErrTransport, ErrUnsubscribeFailed, topic, err)
	}
	return nil
}

// Poll returns the oldest queued message, if any. It never blocks.
func (t *Transport) Poll() (session.Message, bool) {
	select {
	case msg := <-t.inbox:
		return msg, true
	default:
		return session.Message{}, false
	}
}

// enqueue is the paho message callback. It runs on a paho goroutine.
func (t *Transport) enqueue(_ pahomqtt.Client, msg pahomqtt.Message) {
	m := session.Message{Topic: msg.Topic(), Payload: append([]byte(nil), msg.Payload()...)}
	select {
	case t.inbox <- m:
	default:
		t.dropMu.Lock()
		t.dropped++
		n := t.dropped
		t.dropMu.Unlock()
		if logger := t.getLogger(); logger != nil {
			logger.Warn("MQTT inbox full, message dropped", "topic", m.Topic, "dropped_total", n)
		}
	}
}
