package mqtt

import (
	"fmt"

	"github.com/nerrad567/gray-logic-node/internal/session"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends a non-retained message at the configured QoS and waits for
// the broker acknowledgment.
func (t *Transport) Publish(topic string, payload []byte) error {
	return t.publish(topic, payload, false)
}

func (t *Transport) publish(topic string, payload []byte, retained bool) error {
	if topic == "" {
		return fmt.Errorf("%w: %w", session.ErrProtocol, ErrInvalidTopic)
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %w: payload size %d exceeds maximum %d bytes",
			session.ErrProtocol, ErrPublishFailed, len(payload), maxPayloadSize)
	}

	client, err := t.current()
	if err != nil {
		return err
	}

	token := client.Publish(topic, t.opts.QoS, retained, payload)
	if !token.WaitTimeout(t.opts.AckTimeout) {
		return fmt.Errorf("%w: %w: %s: %w", session.ErrTransport, ErrPublishFailed, topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w: %s: %w", session.ErrTransport, ErrPublishFailed, topic, err)
	}
	return nil
}
