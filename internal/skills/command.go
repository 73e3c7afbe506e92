package skills

import (
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Switch payloads.
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

// command is a pending actuator command.
type command int

const (
	cmdNone command = iota
	cmdOn
	cmdOff
	cmdToggle
)

func (c command) String() string {
	switch c {
	case cmdNone:
		return "none"
	case cmdOn:
		return "on"
	case cmdOff:
		return "off"
	case cmdToggle:
		return "toggle"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// apply returns the state after applying c to on.
func (c command) apply(on bool) bool {
	switch c {
	case cmdOn:
		return true
	case cmdOff:
		return false
	case cmdToggle:
		return !on
	default:
		return on
	}
}

// parseSwitch decodes an ON/OFF payload.
func parseSwitch(payload string) (command, error) {
	switch strings.ToUpper(strings.TrimSpace(payload)) {
	case PayloadOn:
		return cmdOn, nil
	case PayloadOff:
		return cmdOff, nil
	default:
		return cmdNone, fmt.Errorf("%w: switch payload %q", skill.ErrInvalidPayload, payload)
	}
}
