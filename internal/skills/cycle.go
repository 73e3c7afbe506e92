package skills

import (
	"math"
	"strconv"
)

// phase is a sense-cycle state.
type phase int

const (
	phaseHeatup phase = iota
	phaseMeasure
	phasePublish
	phaseSleep
)

func (p phase) String() string {
	switch p {
	case phaseHeatup:
		return "heatup"
	case phaseMeasure:
		return "measure"
	case phasePublish:
		return "publish"
	case phaseSleep:
		return "sleep"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// cycle tracks the sense-cycle state and the SLEEP countdown.
type cycle struct {
	state     phase
	sleeps    int
	remaining int
}

func newCycle(sleeps int) cycle {
	if sleeps < 1 {
		sleeps = 1
	}
	return cycle{state: phaseHeatup, sleeps: sleeps, remaining: sleeps}
}

func (c *cycle) arm() {
	c.state = phaseHeatup
	c.remaining = c.sleeps
}

// sleep counts one SLEEP tick and re-arms HEATUP when the count runs out.
func (c *cycle) sleep() {
	c.remaining--
	if c.remaining <= 0 {
		c.arm()
	}
}

// noReading is the sentinel published when a sensor fails.
var noReading = math.NaN()

// hysteresis suppresses publishes that do not move far enough from the
// last published value. NaN is the no-reading sentinel: moving to or from
// it always counts as a change.
type hysteresis struct {
	threshold float64
	last      float64
	has       bool
}

func (h *hysteresis) changed(v float64) bool {
	if !h.has {
		return true
	}
	lastNaN, newNaN := math.IsNaN(h.last), math.IsNaN(v)
	switch {
	case lastNaN && newNaN:
		return false
	case lastNaN || newNaN:
		return true
	}
	return math.Abs(v-h.last) > h.threshold
}

func (h *hysteresis) commit(v float64) {
	h.last = v
	h.has = true
}

func (h *hysteresis) reset() {
	h.has = false
	h.last = 0
}

// formatValue renders v with prec decimals, or "nan" for the sentinel.
func formatValue(v float64, prec int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
