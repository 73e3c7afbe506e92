package skills

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Motion reports a PIR sensor as ON/OFF on pir/status.
type Motion struct {
	skill.Base

	input hal.InputPin
	power hal.OutputPin
	led   indicator

	known   bool
	current bool
	pending bool
	pub     *session.Publication
}

// NewMotion builds a motion skill. power and led may be nil.
func NewMotion(env skill.Env, cfg Config, input hal.InputPin, power, led hal.OutputPin) *Motion {
	cfg.Kind = skill.KindMotion
	cfg = cfg.withDefaults()
	m := &Motion{
		Base:  skill.NewBase(env, skill.KindMotion, cfg.Entity, cfg.Period),
		input: input,
		power: power,
		led:   indicator{pin: led, inverted: cfg.LEDInverted},
	}
	m.pub = m.Publication("pir/status")
	return m
}

// Start powers the sensor. The first sample always counts as a transition.
func (m *Motion) Start() error {
	m.known = false
	m.pending = false
	m.ResetTimer()
	if m.power != nil {
		if err := m.power.Set(true); err != nil {
			return fmt.Errorf("motion: powering sensor: %w", err)
		}
	}
	m.Attach()
	return nil
}

// Tick publishes a transition detected on the previous due tick, then
// samples the input.
func (m *Motion) Tick(now time.Time) error {
	if !m.Due(now) {
		return nil
	}

	if m.pending {
		m.pending = false
		m.Send(m.pub, onOff(m.current))
	}

	v, err := m.input.Read()
	if err != nil {
		return fmt.Errorf("motion: reading input: %w", err)
	}
	if m.known && v == m.current {
		return nil
	}
	m.known = true
	m.current = v
	m.pending = true
	if err := m.led.show(v); err != nil {
		m.Log().Warn("motion led update failed", "error", err)
	}
	return nil
}

// OnMessage rejects everything; the motion skill has no commands.
func (m *Motion) OnMessage(topic, _ string) error {
	return fmt.Errorf("%w: %s", skill.ErrUnexpectedTopic, topic)
}

// Stop turns the LED and sensor power off.
func (m *Motion) Stop() error {
	m.Detach()
	var firstErr error
	if err := m.led.off(); err != nil {
		firstErr = err
	}
	if m.power != nil {
		if err := m.power.Set(false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("motion: stopping: %w", firstErr)
	}
	return nil
}
