package skills

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Brightness levels published on temt6x/level.
const (
	LevelDark   = "DARK"
	LevelBright = "BRIGHT"
)

// Light averages ADC samples from a TEMT6000 ambient light sensor and
// publishes the raw value and a DARK/BRIGHT level.
type Light struct {
	skill.Base

	adc   hal.ADC
	power hal.OutputPin

	samples   int
	darkLevel int

	cycle  cycle
	sum    int
	count  int
	value  float64
	gate   hysteresis
	pubRaw *session.Publication
	pubLvl *session.Publication
}

// NewLight builds a light skill. power may be nil.
func NewLight(env skill.Env, cfg Config, adc hal.ADC, power hal.OutputPin) *Light {
	cfg.Kind = skill.KindLight
	cfg = cfg.withDefaults()
	l := &Light{
		Base:      skill.NewBase(env, skill.KindLight, cfg.Entity, cfg.Period),
		adc:       adc,
		power:     power,
		samples:   cfg.Samples,
		darkLevel: cfg.DarkLevel,
		cycle:     newCycle(cfg.SleepCycles),
		gate:      hysteresis{threshold: cfg.Threshold},
	}
	l.pubRaw = l.Publication("temt6x/raw")
	l.pubLvl = l.Publication("temt6x/level")
	return l
}

// Start arms HEATUP and clears the running average.
func (l *Light) Start() error {
	l.cycle.arm()
	l.sum, l.count = 0, 0
	l.gate.reset()
	l.ResetTimer()
	l.setPower(false)
	l.Attach()
	return nil
}

// Tick advances the sense cycle. MEASURE takes one sample per due tick
// and moves on once the average is complete or a read fails.
func (l *Light) Tick(now time.Time) error {
	if !l.Due(now) {
		return nil
	}

	switch l.cycle.state {
	case phaseHeatup:
		l.setPower(true)
		l.cycle.state = phaseMeasure
	case phaseMeasure:
		l.measure()
	case phasePublish:
		l.publish()
		l.cycle.state = phaseSleep
	case phaseSleep:
		l.cycle.sleep()
	default:
		l.cycle.arm()
		return fmt.Errorf("light: unexpected state %v", l.cycle.state)
	}
	return nil
}

func (l *Light) measure() {
	raw, err := l.adc.Read()
	if err != nil {
		l.Log().Warn("light sample failed", "error", err)
		l.finish(noReading)
		return
	}
	l.sum += raw
	l.count++
	if l.count >= l.samples {
		l.finish(math.Floor(float64(l.sum)/float64(l.count) + 0.5))
	}
}

func (l *Light) finish(v float64) {
	l.value = v
	l.sum, l.count = 0, 0
	l.setPower(false)
	l.cycle.state = phasePublish
}

func (l *Light) publish() {
	if !l.gate.changed(l.value) {
		return
	}
	l.gate.commit(l.value)
	if math.IsNaN(l.value) {
		l.Send(l.pubRaw, formatValue(l.value, 0))
		return
	}
	l.Send(l.pubRaw, strconv.Itoa(int(l.value)))
	l.Send(l.pubLvl, l.level())
}

func (l *Light) level() string {
	if int(l.value) < l.darkLevel {
		return LevelDark
	}
	return LevelBright
}

func (l *Light) setPower(on bool) {
	if l.power == nil {
		return
	}
	if err := l.power.Set(on); err != nil {
		l.Log().Warn("light power switch failed", "on", on, "error", err)
	}
}

// OnMessage rejects everything; the light skill has no commands.
func (l *Light) OnMessage(topic, _ string) error {
	return fmt.Errorf("%w: %s", skill.ErrUnexpectedTopic, topic)
}

// Stop powers the sensor down.
func (l *Light) Stop() error {
	l.setPower(false)
	l.Detach()
	return nil
}
