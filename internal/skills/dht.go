package skills

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// DHT publishes corrected temperature and humidity from a DHT22-class
// sensor through the sense cycle.
type DHT struct {
	skill.Base

	sensor hal.HumiditySensor
	power  hal.OutputPin

	tempFactor float64
	humFactor  float64

	cycle     cycle
	temp, hum float64
	tempGate  hysteresis
	humGate   hysteresis
	pubTemp   *session.Publication
	pubHum    *session.Publication
}

// NewDHT builds a DHT skill. power may be nil.
func NewDHT(env skill.Env, cfg Config, sensor hal.HumiditySensor, power hal.OutputPin) *DHT {
	cfg.Kind = skill.KindDHT
	cfg = cfg.withDefaults()
	d := &DHT{
		Base:       skill.NewBase(env, skill.KindDHT, cfg.Entity, cfg.Period),
		sensor:     sensor,
		power:      power,
		tempFactor: cfg.TempFactor,
		humFactor:  cfg.HumidityFactor,
		cycle:      newCycle(cfg.SleepCycles),
		tempGate:   hysteresis{threshold: cfg.Threshold},
		humGate:    hysteresis{threshold: cfg.HumidityThreshold},
	}
	d.pubTemp = d.Publication("temp_hum/temp")
	d.pubHum = d.Publication("temp_hum/hum")
	return d
}

// Start arms HEATUP so the first due tick begins a measurement.
func (d *DHT) Start() error {
	d.cycle.arm()
	d.tempGate.reset()
	d.humGate.reset()
	d.ResetTimer()
	d.setPower(false)
	d.Attach()
	return nil
}

// Tick advances the sense cycle by one state when the period has elapsed.
func (d *DHT) Tick(now time.Time) error {
	if !d.Due(now) {
		return nil
	}

	switch d.cycle.state {
	case phaseHeatup:
		d.setPower(true)
		d.cycle.state = phaseMeasure
	case phaseMeasure:
		d.measure()
		d.cycle.state = phasePublish
	case phasePublish:
		d.setPower(false)
		d.publish()
		d.cycle.state = phaseSleep
	case phaseSleep:
		d.cycle.sleep()
	default:
		d.cycle.arm()
		return fmt.Errorf("dht: unexpected state %v", d.cycle.state)
	}
	return nil
}

func (d *DHT) measure() {
	if err := d.sensor.Measure(); err != nil {
		d.Log().Warn("dht measure failed", "error", err)
		d.temp, d.hum = noReading, noReading
		return
	}
	d.temp = d.sensor.Temperature() * d.tempFactor
	d.hum = d.sensor.Humidity() * d.humFactor
}

func (d *DHT) publish() {
	if d.tempGate.changed(d.temp) {
		d.tempGate.commit(d.temp)
		d.Send(d.pubTemp, formatValue(d.temp, 1))
	}
	if d.humGate.changed(d.hum) {
		d.humGate.commit(d.hum)
		d.Send(d.pubHum, formatValue(d.hum, 1))
	}
}

func (d *DHT) setPower(on bool) {
	if d.power == nil {
		return
	}
	if err := d.power.Set(on); err != nil {
		d.Log().Warn("dht power switch failed", "on", on, "error", err)
	}
}

// OnMessage rejects everything; the DHT skill has no commands.
func (d *DHT) OnMessage(topic, _ string) error {
	return fmt.Errorf("%w: %s", skill.ErrUnexpectedTopic, topic)
}

// Stop powers the sensor down.
func (d *DHT) Stop() error {
	d.setPower(false)
	d.Detach()
	return nil
}
