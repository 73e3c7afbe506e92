package skills

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// ErrMissingPin is returned when a kind's required pin is not configured.
var ErrMissingPin = errors.New("skills: required pin not configured")

// Build allocates the peripherals for cfg on board and constructs the
// skill. Unknown kinds are rejected.
func Build(cfg Config, env skill.Env, board hal.Board, fw Firmware) (skill.Skill, error) {
	switch cfg.Kind {
	case skill.KindSystem:
		return NewSystem(env, cfg, fw), nil

	case skill.KindDHT:
		pin, err := required(cfg)
		if err != nil {
			return nil, err
		}
		sensor, err := board.HumiditySensor(pin)
		if err != nil {
			return nil, fmt.Errorf("dht sensor: %w", err)
		}
		power, err := optionalOutput(board, cfg.PowerPin)
		if err != nil {
			return nil, fmt.Errorf("dht power: %w", err)
		}
		return NewDHT(env, cfg, sensor, power), nil

	case skill.KindLight:
		pin, err := required(cfg)
		if err != nil {
			return nil, err
		}
		adc, err := board.ADC(pin)
		if err != nil {
			return nil, fmt.Errorf("light adc: %w", err)
		}
		power, err := optionalOutput(board, cfg.PowerPin)
		if err != nil {
			return nil, fmt.Errorf("light power: %w", err)
		}
		return NewLight(env, cfg, adc, power), nil

	case skill.KindMotion:
		pin, err := required(cfg)
		if err != nil {
			return nil, err
		}
		in, err := board.Input(pin, true)
		if err != nil {
			return nil, fmt.Errorf("motion input: %w", err)
		}
		power, err := optionalOutput(board, cfg.PowerPin)
		if err != nil {
			return nil, fmt.Errorf("motion power: %w", err)
		}
		led, err := optionalOutput(board, cfg.LEDPin)
		if err != nil {
			return nil, fmt.Errorf("motion led: %w", err)
		}
		return NewMotion(env, cfg, in, power, led), nil

	case skill.KindSwitch:
		pin, err := required(cfg)
		if err != nil {
			return nil, err
		}
		in, err := board.Input(pin, !cfg.TriggerHigh)
		if err != nil {
			return nil, fmt.Errorf("switch input: %w", err)
		}
		led, err := optionalOutput(board, cfg.LEDPin)
		if err != nil {
			return nil, fmt.Errorf("switch led: %w", err)
		}
		return NewSwitch(env, cfg, in, led), nil

	case skill.KindRelay:
		pin, err := required(cfg)
		if err != nil {
			return nil, err
		}
		out, err := board.Output(pin)
		if err != nil {
			return nil, fmt.Errorf("relay output: %w", err)
		}
		led, err := optionalOutput(board, cfg.LEDPin)
		if err != nil {
			return nil, fmt.Errorf("relay led: %w", err)
		}
		return NewRelay(env, cfg, out, led), nil

	case skill.KindPixel:
		pin, err := required(cfg)
		if err != nil {
			return nil, err
		}
		cfg = cfg.withDefaults()
		strip, err := board.PixelStrip(pin, cfg.PixelCount)
		if err != nil {
			return nil, fmt.Errorf("pixel strip: %w", err)
		}
		return NewPixel(env, cfg, strip), nil

	case skill.KindBeacon:
		filter, err := hal.ParseAddress(cfg.Address)
		if err != nil {
			return nil, err
		}
		radio, err := board.Beacons()
		if err != nil {
			return nil, fmt.Errorf("beacon radio: %w", err)
		}
		return NewBeacon(env, cfg, radio, filter), nil

	default:
		return nil, fmt.Errorf("skills: unknown kind %q", cfg.Kind)
	}
}

func required(cfg Config) (int, error) {
	if cfg.Pin == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingPin, cfg.Kind)
	}
	return *cfg.Pin, nil
}

func optionalOutput(board hal.Board, pin *int) (hal.OutputPin, error) {
	if pin == nil {
		return nil, nil
	}
	return board.Output(*pin)
}
