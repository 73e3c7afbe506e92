package skills

import (
	"reflect"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/hal/sim"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

var mijaAddr = hal.Address{0xa4, 0xc1, 0x38, 0x01, 0x02, 0x03}

func newTestBeacon(t *testing.T, address string) (*Beacon, *sim.Beacons, *fakeBus) {
	t.Helper()
	env, bus, _ := testEnv()
	board := sim.NewBoard()
	s, err := Build(Config{Kind: skill.KindBeacon, Address: address, Location: "kitchen"}, env, board, Firmware{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	b := s.(*Beacon)
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return b, board.BeaconRadio(), bus
}

func TestBeacon_PublishesLatestReading(t *testing.T) {
	b, radio, bus := newTestBeacon(t, "")

	radio.Emit(hal.Advertisement{Address: mijaAddr, RSSI: -70, Counter: 1, Kind: hal.MeasureTemperature, Value: 21.5})
	radio.Emit(hal.Advertisement{Address: mijaAddr, RSSI: -68, Counter: 2, Kind: hal.MeasureHumidity, Value: 48.0})
	radio.Emit(hal.Advertisement{Address: mijaAddr, RSSI: -66, Counter: 3, Kind: hal.MeasureBattery, Value: 87})

	_ = b.Tick(t0)

	want := map[string]string{
		"std/dev1/s/mija/temp": "21.5",
		"std/dev1/s/mija/hum":  "48.0",
		"std/dev1/s/mija/batt": "87",
		"std/dev1/s/mija/cnt":  "3",
		"std/dev1/s/mija/addr": "a4:c1:38:01:02:03",
		"std/dev1/s/mija/loc":  "kitchen",
		"std/dev1/s/mija/rssi": "-66",
	}
	for topic, v := range want {
		if got := bus.on(topic); !reflect.DeepEqual(got, []string{v}) {
			t.Errorf("%s = %v, want [%s]", topic, got, v)
		}
	}
}

func TestBeacon_NothingBeforeData(t *testing.T) {
	b, _, bus := newTestBeacon(t, "")
	_ = b.Tick(t0)
	if len(bus.pubs) != 0 {
		t.Errorf("published %v with no data", bus.pubs)
	}
}

func TestBeacon_PeriodAndRequest(t *testing.T) {
	b, radio, bus := newTestBeacon(t, "")
	radio.Emit(hal.Advertisement{Address: mijaAddr, Kind: hal.MeasureTemperature, Value: 20})

	_ = b.Tick(t0)
	_ = b.Tick(t0.Add(time.Second))
	if got := len(bus.on("std/dev1/s/mija/temp")); got != 1 {
		t.Fatalf("temp publishes = %d before period, want 1", got)
	}

	if err := b.OnMessage("std/dev1/r/mija/data", ""); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	_ = b.Tick(t0.Add(2 * time.Second))
	if got := len(bus.on("std/dev1/s/mija/temp")); got != 2 {
		t.Errorf("temp publishes = %d after request, want 2", got)
	}
}

func TestBeacon_FilterAndStop(t *testing.T) {
	b, radio, bus := newTestBeacon(t, "a4:c1:38:01:02:03")
	radio.Emit(hal.Advertisement{Address: hal.Address{1, 2, 3, 4, 5, 6}, Kind: hal.MeasureTemperature, Value: 30})
	_ = b.Tick(t0)
	if len(bus.pubs) != 0 {
		t.Errorf("published %v for a filtered beacon", bus.pubs)
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if radio.Listeners() != 0 {
		t.Errorf("Listeners() = %d after Stop, want 0", radio.Listeners())
	}
}
