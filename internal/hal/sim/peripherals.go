package sim

import (
	"sync"

	"github.com/nerrad567/gray-logic-node/internal/hal"
)

// Output records the level last written.
type Output struct {
	mu     sync.Mutex
	on     bool
	writes int
}

// Set implements hal.OutputPin.
func (o *Output) Set(on bool) error {
	o.mu.Lock()
	o.on = on
	o.writes++
	o.mu.Unlock()
	return nil
}

// On returns the current level.
func (o *Output) On() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.on
}

// Writes returns how many times Set was called.
func (o *Output) Writes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.writes
}

// Input returns whatever level was last injected.
type Input struct {
	mu    sync.Mutex
	value bool
	err   error
}

// Read implements hal.InputPin.
func (i *Input) Read() (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value, i.err
}

// SetValue injects a level.
func (i *Input) SetValue(v bool) {
	i.mu.Lock()
	i.value = v
	i.mu.Unlock()
}

// SetError makes Read fail with err until cleared with nil.
func (i *Input) SetError(err error) {
	i.mu.Lock()
	i.err = err
	i.mu.Unlock()
}

// ADC returns the injected raw value.
type ADC struct {
	mu    sync.Mutex
	value int
	err   error
	reads int
}

// Read implements hal.ADC.
func (a *ADC) Read() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads++
	return a.value, a.err
}

// SetValue injects a raw reading.
func (a *ADC) SetValue(v int) {
	a.mu.Lock()
	a.value = v
	a.mu.Unlock()
}

// SetError makes Read fail with err until cleared with nil.
func (a *ADC) SetError(err error) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
}

// Reads returns how many samples were taken.
func (a *ADC) Reads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

// Sensor is a simulated temperature/humidity sensor.
type Sensor struct {
	mu                sync.Mutex
	temp, hum         float64
	nextTemp, nextHum float64
	err               error
	measures          int
}

// Measure implements hal.HumiditySensor.
func (s *Sensor) Measure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.measures++
	if s.err != nil {
		return s.err
	}
	s.temp, s.hum = s.nextTemp, s.nextHum
	return nil
}

// Temperature implements hal.HumiditySensor.
func (s *Sensor) Temperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temp
}

// Humidity implements hal.HumiditySensor.
func (s *Sensor) Humidity() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hum
}

// SetReading sets the values the next Measure converts.
func (s *Sensor) SetReading(temp, hum float64) {
	s.mu.Lock()
	s.nextTemp, s.nextHum = temp, hum
	s.mu.Unlock()
}

// SetError makes Measure fail with err until cleared with nil.
func (s *Sensor) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Measures returns how many conversions were triggered.
func (s *Sensor) Measures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.measures
}

// Strip records the colour last written.
type Strip struct {
	mu     sync.Mutex
	n      int
	color  hal.Color
	writes int
}

// Write implements hal.PixelStrip.
func (s *Strip) Write(c hal.Color) error {
	s.mu.Lock()
	s.color = c
	s.writes++
	s.mu.Unlock()
	return nil
}

// Len implements hal.PixelStrip.
func (s *Strip) Len() int { return s.n }

// Color returns the colour last written.
func (s *Strip) Color() hal.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

// Writes returns how many times Write was called.
func (s *Strip) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type listener struct {
	filter hal.Address
	fn     func(hal.Advertisement)
}

// Beacons is a simulated beacon radio.
type Beacons struct {
	mu        sync.Mutex
	next      hal.ListenerID
	listeners map[hal.ListenerID]listener
}

// AddListener implements hal.BeaconListener.
func (b *Beacons) AddListener(filter hal.Address, fn func(hal.Advertisement)) (hal.ListenerID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.listeners[b.next] = listener{filter: filter, fn: fn}
	return b.next, nil
}

// RemoveListener implements hal.BeaconListener.
func (b *Beacons) RemoveListener(id hal.ListenerID) {
	b.mu.Lock()
	delete(b.listeners, id)
	b.mu.Unlock()
}

// Listeners returns the number of registered listeners.
func (b *Beacons) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Emit delivers adv to every listener whose filter matches.
func (b *Beacons) Emit(adv hal.Advertisement) {
	b.mu.Lock()
	var fns []func(hal.Advertisement)
	for _, l := range b.listeners {
		if l.filter.Matches(adv.Address) {
			fns = append(fns, l.fn)
		}
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(adv)
	}
}
