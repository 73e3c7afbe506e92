package node

import "github.com/nerrad567/gray-logic-node/internal/journal"

// Modes reported on gen/mode.
const (
	ModeNormal      = "normal"
	ModeMaintenance = "maintenance"
)

// control implements skill.SystemControl. Requests are recorded here and
// acted on by the run loop between passes.
type control struct {
	logger Logger

	mode        string
	stopPending bool
	resetReason string
}

func newControl(logger Logger) *control {
	return &control{logger: logger, mode: ModeNormal}
}

// Reset records the first reset reason; later requests in the same pass
// are ignored.
func (c *control) Reset(reason string) {
	if c.resetReason != "" {
		return
	}
	c.resetReason = reason
	c.logger.Warn(journal.ResetMessage, "reason", reason)
}

func (c *control) EnterMaintenance(reason string) {
	if c.mode == ModeMaintenance {
		return
	}
	c.mode = ModeMaintenance
	c.stopPending = true
	c.logger.Warn("entering maintenance mode", "reason", reason)
}

func (c *control) RequestUpdate() {
	c.logger.Info("firmware update requested")
	c.Reset("update requested")
}

func (c *control) Mode() string { return c.mode }
