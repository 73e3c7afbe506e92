package node

import (
	"fmt"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/hal/sim"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

// NewBoard returns the board driver named by hardware.board.
func NewBoard(name string) (hal.Board, error) {
	switch name {
	case config.BoardSim, "":
		return sim.NewBoard(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBoard, name)
	}
}
