// Package sim provides an in-memory hal.Board. It backs the "sim" hardware
// driver and every skill test.
package sim

import (
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-node/internal/hal"
)

// Board is a simulated board. Peripherals are created on first request and
// can be driven through the typed accessors below.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	used     map[int]string
	outputs  map[int]*Output
	inputs   map[int]*Input
	adcs     map[int]*ADC
	sensors  map[int]*Sensor
	strips   map[int]*Strip
	beacons  *Beacons
	noBeacon bool
}

// NewBoard returns an empty simulated board.
func NewBoard() *Board {
	return &Board{
		used:    make(map[int]string),
		outputs: make(map[int]*Output),
		inputs:  make(map[int]*Input),
		adcs:    make(map[int]*ADC),
		sensors: make(map[int]*Sensor),
		strips:  make(map[int]*Strip),
		beacons: &Beacons{listeners: make(map[hal.ListenerID]listener)},
	}
}

// DisableBeacons makes Beacons return hal.ErrUnsupported.
func (b *Board) DisableBeacons() {
	b.mu.Lock()
	b.noBeacon = true
	b.mu.Unlock()
}

func (b *Board) claim(pin int, what string) error {
	if owner, ok := b.used[pin]; ok {
		return fmt.Errorf("%w: pin %d (%s)", hal.ErrPinInUse, pin, owner)
	}
	b.used[pin] = what
	return nil
}

// Output implements hal.Board.
func (b *Board) Output(pin int) (hal.OutputPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.claim(pin, "output"); err != nil {
		return nil, err
	}
	o := &Output{}
	b.outputs[pin] = o
	return o, nil
}

// Input implements hal.Board. A pulled-up input idles high.
func (b *Board) Input(pin int, pullUp bool) (hal.InputPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.claim(pin, "input"); err != nil {
		return nil, err
	}
	in := &Input{value: pullUp}
	b.inputs[pin] = in
	return in, nil
}

// ADC implements hal.Board.
func (b *Board) ADC(pin int) (hal.ADC, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.claim(pin, "adc"); err != nil {
		return nil, err
	}
	a := &ADC{}
	b.adcs[pin] = a
	return a, nil
}

// HumiditySensor implements hal.Board. New sensors read 21.0 °C and 40 %.
func (b *Board) HumiditySensor(pin int) (hal.HumiditySensor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.claim(pin, "humidity"); err != nil {
		return nil, err
	}
	s := &Sensor{temp: 21.0, hum: 40.0, nextTemp: 21.0, nextHum: 40.0}
	b.sensors[pin] = s
	return s, nil
}

// PixelStrip implements hal.Board.
func (b *Board) PixelStrip(pin, count int) (hal.PixelStrip, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.claim(pin, "pixel"); err != nil {
		return nil, err
	}
	s := &Strip{n: count}
	b.strips[pin] = s
	return s, nil
}

// Beacons implements hal.Board.
func (b *Board) Beacons() (hal.BeaconListener, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.noBeacon {
		return nil, hal.ErrUnsupported
	}
	return b.beacons, nil
}

// Close implements hal.Board.
func (b *Board) Close() error { return nil }

// OutputAt returns the output allocated on pin, or nil.
func (b *Board) OutputAt(pin int) *Output {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outputs[pin]
}

// InputAt returns the input allocated on pin, or nil.
func (b *Board) InputAt(pin int) *Input {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inputs[pin]
}

// ADCAt returns the ADC allocated on pin, or nil.
func (b *Board) ADCAt(pin int) *ADC {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adcs[pin]
}

// SensorAt returns the humidity sensor allocated on pin, or nil.
func (b *Board) SensorAt(pin int) *Sensor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sensors[pin]
}

// StripAt returns the pixel strip allocated on pin, or nil.
func (b *Board) StripAt(pin int) *Strip {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.strips[pin]
}

// BeaconRadio returns the simulated beacon radio.
func (b *Board) BeaconRadio() *Beacons { return b.beacons }
