package skills

import (
	"reflect"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/hal/sim"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

func runLight(t *testing.T, raw int, readErr error, ticks int) (*sim.ADC, *fakeBus) {
	t.Helper()
	env, bus, _ := testEnv()
	board := sim.NewBoard()
	s, err := Build(Config{Kind: skill.KindLight, Pin: intPtr(34)}, env, board, Firmware{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	adc := board.ADCAt(34)
	adc.SetValue(raw)
	adc.SetError(readErr)

	_ = s.Start()
	for i := 0; i < ticks; i++ {
		if err := s.Tick(t0.Add(time.Duration(i) * DefaultLightPeriod)); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	return adc, bus
}

func TestLight_AveragesAndPublishes(t *testing.T) {
	tests := []struct {
		name  string
		raw   int
		level string
	}{
		{"bright", 1000, LevelBright},
		{"dark", 120, LevelDark},
		{"at threshold", DefaultLightDarkLevel, LevelBright},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// heatup + samples + publish
			adc, bus := runLight(t, tt.raw, nil, 1+DefaultLightSamples+1)

			if adc.Reads() != DefaultLightSamples {
				t.Errorf("Reads() = %d, want %d", adc.Reads(), DefaultLightSamples)
			}
			if got := bus.on("std/dev1/s/temt6x/level"); !reflect.DeepEqual(got, []string{tt.level}) {
				t.Errorf("level publishes = %v, want [%s]", got, tt.level)
			}
			if got := bus.on("std/dev1/s/temt6x/raw"); len(got) != 1 {
				t.Errorf("raw publishes = %v, want one", got)
			}
		})
	}
}

func TestLight_ReadFailurePublishesSentinel(t *testing.T) {
	_, bus := runLight(t, 0, hal.ErrReadFailed, 3)

	if got := bus.on("std/dev1/s/temt6x/raw"); !reflect.DeepEqual(got, []string{"nan"}) {
		t.Errorf("raw publishes = %v, want [nan]", got)
	}
	if got := bus.on("std/dev1/s/temt6x/level"); len(got) != 0 {
		t.Errorf("level publishes = %v, want none", got)
	}
}

func TestLight_RejectsMessages(t *testing.T) {
	env, _, _ := testEnv()
	l := NewLight(env, Config{}, &sim.ADC{}, nil)
	if err := l.OnMessage("std/dev1/r/temt6x/raw", "1"); err == nil {
		t.Error("OnMessage() error = nil, want ErrUnexpectedTopic")
	}
}
