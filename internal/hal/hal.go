// Package hal defines the hardware accessors skills consume.
//
// Every accessor is synchronous and non-blocking or bounded-latency. A
// pin handle belongs to the skill that allocated it; boards refuse to hand
// the same pin out twice.
package hal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrPinInUse is returned when a pin is already allocated.
	ErrPinInUse = errors.New("hal: pin already in use")

	// ErrUnsupported is returned when a board lacks a peripheral.
	ErrUnsupported = errors.New("hal: peripheral not supported")

	// ErrReadFailed is returned by sensors that could not produce a reading.
	ErrReadFailed = errors.New("hal: sensor read failed")

	// ErrInvalidAddress is returned by ParseAddress.
	ErrInvalidAddress = errors.New("hal: invalid beacon address")
)

// OutputPin drives a digital output.
type OutputPin interface {
	Set(on bool) error
}

// InputPin samples a digital input.
type InputPin interface {
	Read() (bool, error)
}

// ADC samples an analog input.
type ADC interface {
	Read() (int, error)
}

// HumiditySensor is a combined temperature/humidity sensor. Measure
// triggers a conversion; the accessors return the last converted values.
type HumiditySensor interface {
	Measure() error
	Temperature() float64
	Humidity() float64
}

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// String returns "r,g,b".
func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// Scale returns c with every channel multiplied by pct/100.
func (c Color) Scale(pct int) Color {
	if pct >= 100 {
		return c
	}
	if pct <= 0 {
		return Color{}
	}
	f := func(v uint8) uint8 { return uint8(int(v) * pct / 100) }
	return Color{R: f(c.R), G: f(c.G), B: f(c.B)}
}

// PixelStrip is a chain of addressable LEDs showing one colour.
type PixelStrip interface {
	Write(c Color) error
	Len() int
}

// Address is a 6-byte beacon hardware address.
type Address [6]byte

// AnyAddress is the wildcard filter accepting every beacon.
var AnyAddress = Address{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// ParseAddress parses "aa:bb:cc:dd:ee:ff". An empty string yields AnyAddress.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return AnyAddress, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != len(Address{}) {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	var a Address
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil || len(p) != 2 {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		a[i] = byte(v)
	}
	return a, nil
}

// String returns the colon-separated lowercase form.
func (a Address) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Matches reports whether a beacon address passes filter a.
func (a Address) Matches(addr Address) bool {
	return a == AnyAddress || a == addr
}

// MeasurementKind names the typed value carried by an advertisement.
type MeasurementKind int

const (
	MeasureNone MeasurementKind = iota
	MeasureTemperature
	MeasureHumidity
	MeasureBattery
)

// Advertisement is one pre-decoded beacon frame.
type Advertisement struct {
	Address Address
	RSSI    int
	Counter int
	Kind    MeasurementKind
	Value   float64
}

// ListenerID identifies a registered beacon listener.
type ListenerID int

// BeaconListener delivers decoded advertisements. Callbacks run on the
// driver's goroutine and must not block.
type BeaconListener interface {
	AddListener(filter Address, fn func(Advertisement)) (ListenerID, error)
	RemoveListener(id ListenerID)
}

// Board hands out peripherals by pin number.
type Board interface {
	Output(pin int) (OutputPin, error)
	Input(pin int, pullUp bool) (InputPin, error)
	ADC(pin int) (ADC, error)
	HumiditySensor(pin int) (HumiditySensor, error)
	PixelStrip(pin, count int) (PixelStrip, error)
	Beacons() (BeaconListener, error)
	Close() error
}
