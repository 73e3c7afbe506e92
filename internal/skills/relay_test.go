package skills

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/gray-logic-node/internal/hal/sim"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

func TestRelay_Commands(t *testing.T) {
	env, bus, _ := testEnv()
	board := sim.NewBoard()
	s, err := Build(Config{Kind: skill.KindRelay, Pin: intPtr(12), LEDPin: intPtr(13)}, env, board, Firmware{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	r := s.(*Relay)
	out, led := board.OutputAt(12), board.OutputAt(13)

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	_ = r.Tick(t0)

	steps := []struct {
		topic   string
		payload string
		want    bool
	}{
		{"std/dev1/r/relay/switch", "ON", true},
		{"std/dev1/r/relay/switch", " off ", false},
		{"std/dev1/r/relay/toggle", "", true},
		{"std/dev1/r/relay/toggle", "anything", false},
	}
	for i, step := range steps {
		if err := r.OnMessage(step.topic, step.payload); err != nil {
			t.Fatalf("step %d: OnMessage() error = %v", i, err)
		}
		if r.On() == step.want {
			t.Fatalf("step %d: relay changed before tick", i)
		}
		_ = r.Tick(t0)
		if r.On() != step.want || out.On() != step.want || led.On() != step.want {
			t.Errorf("step %d: relay=%v out=%v led=%v, want %v", i, r.On(), out.On(), led.On(), step.want)
		}
	}

	want := []string{"OFF", "ON", "OFF", "ON", "OFF"}
	if got := bus.on("std/dev1/s/relay/state"); !reflect.DeepEqual(got, want) {
		t.Errorf("relay/state = %v, want %v", got, want)
	}
}

func TestRelay_RejectsBadInput(t *testing.T) {
	env, _, _ := testEnv()
	r := NewRelay(env, Config{}, &sim.Output{}, nil)

	if err := r.OnMessage("std/dev1/r/relay/switch", "maybe"); !errors.Is(err, skill.ErrInvalidPayload) {
		t.Errorf("OnMessage(maybe) error = %v, want ErrInvalidPayload", err)
	}
	if err := r.OnMessage("std/dev1/r/relay/other", "ON"); !errors.Is(err, skill.ErrUnexpectedTopic) {
		t.Errorf("OnMessage(other) error = %v, want ErrUnexpectedTopic", err)
	}
}

func TestRelay_StopOpensRelay(t *testing.T) {
	env, _, _ := testEnv()
	out := &sim.Output{}
	r := NewRelay(env, Config{}, out, nil)
	_ = r.Start()
	_ = r.OnMessage("std/dev1/r/relay/switch", "ON")
	_ = r.Tick(t0)

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if out.On() {
		t.Error("relay closed after Stop")
	}
}
