package skills

import (
	"time"

	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Config describes one skill instance. Fields a kind does not use are
// ignored; zero values take the kind's default.
type Config struct {
	Kind   skill.Kind
	Entity string
	Period time.Duration

	// Pins. Nil means not fitted.
	Pin      *int
	PowerPin *int
	LEDPin   *int

	LEDInverted bool
	PixelCount  int

	// Sense-cycle tuning.
	SleepCycles       int
	Threshold         float64
	HumidityThreshold float64
	Samples           int
	DarkLevel         int
	TempFactor        float64
	HumidityFactor    float64

	// Switch tuning.
	TriggerHigh bool
	AutoOff     time.Duration
	RateWindow  time.Duration
	RateLimit   int

	// Beacon filter.
	Location string
	Address  string
}

// Defaults per kind.
const (
	DefaultDHTPeriod         = 3 * time.Second
	DefaultDHTSleepCycles    = 5
	DefaultDHTTempThreshold  = 0.2
	DefaultDHTHumThreshold   = 1.0
	DefaultDHTTempFactor     = 1.00
	DefaultDHTHumidityFactor = 1.23

	DefaultLightPeriod      = 500 * time.Millisecond
	DefaultLightSleepCycles = 30
	DefaultLightSamples     = 10
	DefaultLightThreshold   = 2.0
	DefaultLightDarkLevel   = 300

	DefaultMotionPeriod = 500 * time.Millisecond

	DefaultSwitchAutoOff    = 2 * time.Second
	DefaultSwitchRateWindow = 10 * time.Second
	DefaultSwitchRateLimit  = 10

	DefaultPixelCount = 1

	DefaultBeaconPeriod = 5 * time.Second
)

// withDefaults fills zero fields for c.Kind.
func (c Config) withDefaults() Config {
	switch c.Kind {
	case skill.KindDHT:
		setDuration(&c.Period, DefaultDHTPeriod)
		setInt(&c.SleepCycles, DefaultDHTSleepCycles)
		setFloat(&c.Threshold, DefaultDHTTempThreshold)
		setFloat(&c.HumidityThreshold, DefaultDHTHumThreshold)
		setFloat(&c.TempFactor, DefaultDHTTempFactor)
		setFloat(&c.HumidityFactor, DefaultDHTHumidityFactor)
	case skill.KindLight:
		setDuration(&c.Period, DefaultLightPeriod)
		setInt(&c.SleepCycles, DefaultLightSleepCycles)
		setInt(&c.Samples, DefaultLightSamples)
		setFloat(&c.Threshold, DefaultLightThreshold)
		setInt(&c.DarkLevel, DefaultLightDarkLevel)
	case skill.KindMotion:
		setDuration(&c.Period, DefaultMotionPeriod)
	case skill.KindSwitch:
		setDuration(&c.AutoOff, DefaultSwitchAutoOff)
		setDuration(&c.RateWindow, DefaultSwitchRateWindow)
		setInt(&c.RateLimit, DefaultSwitchRateLimit)
	case skill.KindPixel:
		setInt(&c.PixelCount, DefaultPixelCount)
	case skill.KindBeacon:
		setDuration(&c.Period, DefaultBeaconPeriod)
	}
	return c
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

func setInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func setFloat(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

// Firmware identifies the running image. The system skill publishes it.
type Firmware struct {
	PartNumber  string
	Qualifier   string
	Version     string
	Description string
}

// Ident returns "<part>-<qualifier>-<version>".
func (f Firmware) Ident() string {
	return f.PartNumber + "-" + f.Qualifier + "-" + f.Version
}
