package skills

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/gray-logic-node/internal/hal/sim"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

func TestMotion_PublishesTransitionsOnNextTick(t *testing.T) {
	env, bus, _ := testEnv()
	board := sim.NewBoard()
	s, err := Build(Config{Kind: skill.KindMotion, Pin: intPtr(14), PowerPin: intPtr(15), LEDPin: intPtr(2)}, env, board, Firmware{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	in, led, power := board.InputAt(14), board.OutputAt(2), board.OutputAt(15)
	in.SetValue(false)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !power.On() {
		t.Error("sensor power off after Start, want on")
	}

	now := t0
	tick := func() {
		if err := s.Tick(now); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		now = now.Add(DefaultMotionPeriod)
	}

	tick() // first sample
	if got := bus.on("std/dev1/s/pir/status"); len(got) != 0 {
		t.Fatalf("published %v on the sampling tick, want nothing yet", got)
	}
	tick()
	in.SetValue(true)
	tick()
	if !led.On() {
		t.Error("LED off during motion, want on")
	}
	tick()
	tick()

	want := []string{"OFF", "ON"}
	if got := bus.on("std/dev1/s/pir/status"); !reflect.DeepEqual(got, want) {
		t.Errorf("pir/status = %v, want %v", got, want)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if led.On() || power.On() {
		t.Error("LED or power still on after Stop")
	}
}

func TestMotion_ReadError(t *testing.T) {
	env, _, _ := testEnv()
	in := &sim.Input{}
	in.SetError(errors.New("bus fault"))
	m := NewMotion(env, Config{}, in, nil, nil)
	_ = m.Start()

	if err := m.Tick(t0); err == nil {
		t.Error("Tick() error = nil, want read error")
	}
}
