package skills

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// beaconReading is the latest data decoded from a beacon.
type beaconReading struct {
	address     hal.Address
	rssi        int
	counter     int
	temperature float64
	humidity    float64
	battery     float64
}

// Beacon republishes readings from Xiaomi Mija BLE thermometers under
// mija/*. The radio callback only records data; publishing happens on
// the skill's own tick.
type Beacon struct {
	skill.Base

	radio    hal.BeaconListener
	filter   hal.Address
	location string

	requestTopic string
	listener     hal.ListenerID
	listening    bool
	requested    bool

	mu      sync.Mutex
	latest  beaconReading
	hasData bool

	pubTemp *session.Publication
	pubHum  *session.Publication
	pubBatt *session.Publication
	pubCnt  *session.Publication
	pubAddr *session.Publication
	pubLoc  *session.Publication
	pubRSSI *session.Publication
}

// NewBeacon builds a beacon skill listening for filter (hal.AnyAddress
// accepts every beacon).
func NewBeacon(env skill.Env, cfg Config, radio hal.BeaconListener, filter hal.Address) *Beacon {
	cfg.Kind = skill.KindBeacon
	cfg = cfg.withDefaults()
	b := &Beacon{
		Base:     skill.NewBase(env, skill.KindBeacon, cfg.Entity, cfg.Period),
		radio:    radio,
		filter:   filter,
		location: cfg.Location,
	}
	b.requestTopic = b.Listen(b, "mija/data")
	b.pubTemp = b.Publication("mija/temp")
	b.pubHum = b.Publication("mija/hum")
	b.pubBatt = b.Publication("mija/batt")
	b.pubCnt = b.Publication("mija/cnt")
	b.pubAddr = b.Publication("mija/addr")
	b.pubLoc = b.Publication("mija/loc")
	b.pubRSSI = b.Publication("mija/rssi")
	return b
}

// Start registers the radio listener.
func (b *Beacon) Start() error {
	if !b.listening {
		id, err := b.radio.AddListener(b.filter, b.receive)
		if err != nil {
			return fmt.Errorf("beacon: adding listener: %w", err)
		}
		b.listener = id
		b.listening = true
	}
	b.ResetTimer()
	b.Attach()
	return nil
}

// receive runs on the radio goroutine.
func (b *Beacon) receive(adv hal.Advertisement) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest.address = adv.Address
	b.latest.rssi = adv.RSSI
	b.latest.counter = adv.Counter
	switch adv.Kind {
	case hal.MeasureTemperature:
		b.latest.temperature = adv.Value
	case hal.MeasureHumidity:
		b.latest.humidity = adv.Value
	case hal.MeasureBattery:
		b.latest.battery = adv.Value
	}
	b.hasData = true
}

// OnMessage handles mija/data, which forces a publish on the next tick.
func (b *Beacon) OnMessage(topic, _ string) error {
	if topic != b.requestTopic {
		return fmt.Errorf("%w: %s", skill.ErrUnexpectedTopic, topic)
	}
	b.requested = true
	return nil
}

// Tick publishes the latest reading once per period, or immediately after
// a data request.
func (b *Beacon) Tick(now time.Time) error {
	due := b.Due(now)
	if !due && !b.requested {
		return nil
	}
	b.requested = false

	b.mu.Lock()
	r, ok := b.latest, b.hasData
	b.mu.Unlock()
	if !ok {
		return nil
	}

	b.Send(b.pubTemp, formatValue(r.temperature, 1))
	b.Send(b.pubHum, formatValue(r.humidity, 1))
	b.Send(b.pubBatt, formatValue(r.battery, 0))
	b.Send(b.pubCnt, strconv.Itoa(r.counter))
	b.Send(b.pubAddr, r.address.String())
	b.Send(b.pubLoc, b.location)
	b.Send(b.pubRSSI, strconv.Itoa(r.rssi))
	return nil
}

// Stop removes the radio listener.
func (b *Beacon) Stop() error {
	b.Detach()
	if b.listening {
		b.radio.RemoveListener(b.listener)
		b.listening = false
	}
	return nil
}
