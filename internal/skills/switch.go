package skills

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Switch turns a momentary input into an ON pulse on switch/triggered
// that reverts to OFF after AutoOff. More than RateLimit triggers inside
// RateWindow is treated as a stuck or flooding switch and resets the node.
type Switch struct {
	skill.Base

	input       hal.InputPin
	led         indicator
	triggerHigh bool
	autoOff     time.Duration
	window      time.Duration
	limit       int

	known    bool
	level    bool
	on       bool
	onSince  time.Time
	pending  string
	triggers []time.Time
	pub      *session.Publication
}

// NewSwitch builds a switch skill. led may be nil.
func NewSwitch(env skill.Env, cfg Config, input hal.InputPin, led hal.OutputPin) *Switch {
	cfg.Kind = skill.KindSwitch
	cfg = cfg.withDefaults()
	s := &Switch{
		Base:        skill.NewBase(env, skill.KindSwitch, cfg.Entity, cfg.Period),
		input:       input,
		led:         indicator{pin: led, inverted: cfg.LEDInverted},
		triggerHigh: cfg.TriggerHigh,
		autoOff:     cfg.AutoOff,
		window:      cfg.RateWindow,
		limit:       cfg.RateLimit,
	}
	s.pub = s.Publication("switch/triggered")
	return s
}

// Start clears the trigger history.
func (s *Switch) Start() error {
	s.known = false
	s.on = false
	s.pending = ""
	s.triggers = s.triggers[:0]
	s.ResetTimer()
	s.Attach()
	return nil
}

// Tick flushes a pending publication, applies the auto-off timer and then
// samples the input.
func (s *Switch) Tick(now time.Time) error {
	if !s.Due(now) {
		return nil
	}

	if s.pending != "" {
		s.Send(s.pub, s.pending)
		s.pending = ""
	}

	if s.on && now.Sub(s.onSince) >= s.autoOff {
		s.setOn(false)
	}

	v, err := s.input.Read()
	if err != nil {
		return fmt.Errorf("switch: reading input: %w", err)
	}
	first := !s.known
	changed := s.known && v != s.level
	s.known = true
	s.level = v
	if first || !changed || v != s.triggerHigh {
		return nil
	}

	s.setOn(true)
	s.onSince = now
	s.countTrigger(now)
	return nil
}

func (s *Switch) setOn(on bool) {
	s.on = on
	s.pending = onOff(on)
	if err := s.led.show(on); err != nil {
		s.Log().Warn("switch led update failed", "error", err)
	}
}

// countTrigger keeps the triggers inside the rolling window and resets the
// node once there are more than limit of them.
func (s *Switch) countTrigger(now time.Time) {
	kept := s.triggers[:0]
	for _, t := range s.triggers {
		if now.Sub(t) <= s.window {
			kept = append(kept, t)
		}
	}
	s.triggers = append(kept, now)

	if len(s.triggers) <= s.limit {
		return
	}
	s.Log().Error("switch trigger rate exceeded", "triggers", len(s.triggers), "window", s.window.String())
	s.triggers = s.triggers[:0]
	if sys := s.Env().System; sys != nil {
		sys.Reset(fmt.Sprintf("switch %s triggered more than %d times in %s", s.Name(), s.limit, s.window))
	}
}

// OnMessage rejects everything; the switch skill has no commands.
func (s *Switch) OnMessage(topic, _ string) error {
	return fmt.Errorf("%w: %s", skill.ErrUnexpectedTopic, topic)
}

// Stop turns the LED off.
func (s *Switch) Stop() error {
	s.Detach()
	s.on = false
	if err := s.led.off(); err != nil {
		return fmt.Errorf("switch: stopping: %w", err)
	}
	return nil
}
