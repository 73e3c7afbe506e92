package skills

import "github.com/nerrad567/gray-logic-node/internal/hal"

// indicator is an optional LED mirroring a binary state.
type indicator struct {
	pin      hal.OutputPin
	inverted bool
}

func (i indicator) show(on bool) error {
	if i.pin == nil {
		return nil
	}
	return i.pin.Set(on != i.inverted)
}

// off de-energises the LED regardless of inversion.
func (i indicator) off() error {
	if i.pin == nil {
		return nil
	}
	return i.pin.Set(false)
}

func onOff(on bool) string {
	if on {
		return PayloadOn
	}
	return PayloadOff
}
