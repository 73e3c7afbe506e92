package skills

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Relay drives a relay output from relay/switch and relay/toggle and
// echoes its state on relay/state.
type Relay struct {
	skill.Base

	out hal.OutputPin
	led indicator

	switchTopic string
	toggleTopic string

	cmd     command
	on      bool
	pending bool
	pub     *session.Publication
}

// NewRelay builds a relay skill. led may be nil.
func NewRelay(env skill.Env, cfg Config, out, led hal.OutputPin) *Relay {
	cfg.Kind = skill.KindRelay
	cfg = cfg.withDefaults()
	r := &Relay{
		Base: skill.NewBase(env, skill.KindRelay, cfg.Entity, cfg.Period),
		out:  out,
		led:  indicator{pin: led, inverted: cfg.LEDInverted},
	}
	r.switchTopic = r.Listen(r, "relay/switch")
	r.toggleTopic = r.Listen(r, "relay/toggle")
	r.pub = r.Publication("relay/state")
	return r
}

// Start switches the relay off and schedules a state echo.
func (r *Relay) Start() error {
	r.cmd = cmdNone
	if err := r.drive(false); err != nil {
		return err
	}
	r.pending = true
	r.ResetTimer()
	r.Attach()
	return nil
}

// OnMessage decodes a command. The relay is driven on the next tick.
func (r *Relay) OnMessage(topic, payload string) error {
	switch topic {
	case r.switchTopic:
		cmd, err := parseSwitch(payload)
		if err != nil {
			return err
		}
		r.cmd = cmd
	case r.toggleTopic:
		r.cmd = cmdToggle
	default:
		return fmt.Errorf("%w: %s", skill.ErrUnexpectedTopic, topic)
	}
	return nil
}

// Tick applies a pending command and echoes the resulting state.
func (r *Relay) Tick(now time.Time) error {
	if !r.Due(now) {
		return nil
	}

	if r.cmd != cmdNone {
		cmd := r.cmd
		r.cmd = cmdNone
		if err := r.drive(cmd.apply(r.on)); err != nil {
			return err
		}
		r.pending = true
	}

	if r.pending {
		r.pending = false
		r.Send(r.pub, onOff(r.on))
	}
	return nil
}

func (r *Relay) drive(on bool) error {
	if err := r.out.Set(on); err != nil {
		return fmt.Errorf("relay: driving output: %w", err)
	}
	r.on = on
	if err := r.led.show(on); err != nil {
		r.Log().Warn("relay led update failed", "error", err)
	}
	return nil
}

// On reports the relay state.
func (r *Relay) On() bool { return r.on }

// Stop opens the relay.
func (r *Relay) Stop() error {
	r.Detach()
	r.cmd = cmdNone
	err := r.drive(false)
	if ledErr := r.led.off(); ledErr != nil && err == nil {
		err = ledErr
	}
	return err
}
