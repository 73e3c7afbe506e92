package skills

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Brightness range in percent.
const (
	minBrightness = 0
	maxBrightness = 100
)

// Pixel drives an addressable LED strip showing a single colour.
//
// Topics (requests): neo_one/switch, neo_one/toggle, neo_one/color,
// neo_one/brightness. Status: neo_one/state, neo_one/color,
// neo_one/brightness.
type Pixel struct {
	skill.Base

	strip hal.PixelStrip

	switchTopic     string
	toggleTopic     string
	colorTopic      string
	brightnessTopic string

	on         bool
	color      hal.Color
	brightness int

	cmd        command
	nextColor  *hal.Color
	nextBright *int
	pending    bool

	pubState  *session.Publication
	pubColor  *session.Publication
	pubBright *session.Publication
}

// NewPixel builds a pixel skill. The initial colour is red at full
// brightness, switched off.
func NewPixel(env skill.Env, cfg Config, strip hal.PixelStrip) *Pixel {
	cfg.Kind = skill.KindPixel
	cfg = cfg.withDefaults()
	p := &Pixel{
		Base:       skill.NewBase(env, skill.KindPixel, cfg.Entity, cfg.Period),
		strip:      strip,
		color:      hal.Color{R: 255},
		brightness: maxBrightness,
	}
	p.switchTopic = p.Listen(p, "neo_one/switch")
	p.toggleTopic = p.Listen(p, "neo_one/toggle")
	p.colorTopic = p.Listen(p, "neo_one/color")
	p.brightnessTopic = p.Listen(p, "neo_one/brightness")
	p.pubState = p.Publication("neo_one/state")
	p.pubColor = p.Publication("neo_one/color")
	p.pubBright = p.Publication("neo_one/brightness")
	return p
}

// ParseColor decodes "r,g,b". Each component must be an integer in 0..255.
func ParseColor(payload string) (hal.Color, error) {
	parts := strings.Split(payload, ",")
	if len(parts) != 3 {
		return hal.Color{}, fmt.Errorf("%w: color %q needs three components", skill.ErrInvalidPayload, payload)
	}
	var rgb [3]uint8
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v > 255 {
			return hal.Color{}, fmt.Errorf("%w: color component %q out of range", skill.ErrInvalidPayload, part)
		}
		rgb[i] = uint8(v)
	}
	return hal.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

func parseBrightness(payload string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil || v < minBrightness || v > maxBrightness {
		return 0, fmt.Errorf("%w: brightness %q", skill.ErrInvalidPayload, payload)
	}
	return v, nil
}

// Start blanks the strip and schedules a state echo.
func (p *Pixel) Start() error {
	p.cmd = cmdNone
	p.nextColor, p.nextBright = nil, nil
	p.on = false
	if err := p.strip.Write(hal.Color{}); err != nil {
		return fmt.Errorf("pixel: blanking strip: %w", err)
	}
	p.pending = true
	p.ResetTimer()
	p.Attach()
	return nil
}

// OnMessage decodes and validates a command. Invalid payloads leave the
// pending command untouched.
func (p *Pixel) OnMessage(topic, payload string) error {
	switch topic {
	case p.switchTopic:
		cmd, err := parseSwitch(payload)
		if err != nil {
			return err
		}
		p.cmd = cmd
	case p.toggleTopic:
		p.cmd = cmdToggle
	case p.colorTopic:
		c, err := ParseColor(payload)
		if err != nil {
			return err
		}
		p.nextColor = &c
		p.cmd = cmdOn
	case p.brightnessTopic:
		b, err := parseBrightness(payload)
		if err != nil {
			return err
		}
		p.nextBright = &b
		if b == 0 {
			p.cmd = cmdOff
		} else {
			p.cmd = cmdOn
		}
	default:
		return fmt.Errorf("%w: %s", skill.ErrUnexpectedTopic, topic)
	}
	return nil
}

// Tick applies the pending command and echoes state, colour and brightness.
func (p *Pixel) Tick(now time.Time) error {
	if !p.Due(now) {
		return nil
	}

	if p.cmd != cmdNone {
		if err := p.apply(); err != nil {
			return err
		}
		p.pending = true
	}

	if p.pending {
		p.pending = false
		p.Send(p.pubState, onOff(p.on))
		p.Send(p.pubColor, p.color.String())
		p.Send(p.pubBright, strconv.Itoa(p.brightness))
	}
	return nil
}

func (p *Pixel) apply() error {
	cmd := p.cmd
	p.cmd = cmdNone
	if p.nextColor != nil {
		p.color = *p.nextColor
		p.nextColor = nil
	}
	if p.nextBright != nil {
		p.brightness = *p.nextBright
		p.nextBright = nil
	}

	on := cmd.apply(p.on)
	out := hal.Color{}
	if on {
		out = p.color.Scale(p.brightness)
	}
	if err := p.strip.Write(out); err != nil {
		return fmt.Errorf("pixel: writing strip: %w", err)
	}
	p.on = on
	return nil
}

// Color returns the configured colour.
func (p *Pixel) Color() hal.Color { return p.color }

// On reports whether the strip is lit.
func (p *Pixel) On() bool { return p.on }

// Stop blanks the strip.
func (p *Pixel) Stop() error {
	p.Detach()
	p.cmd = cmdNone
	p.on = false
	if err := p.strip.Write(hal.Color{}); err != nil {
		return fmt.Errorf("pixel: blanking strip: %w", err)
	}
	return nil
}
