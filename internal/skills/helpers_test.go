package skills

import (
	"time"

	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

type published struct {
	topic   string
	payload string
}

// fakeBus records publishes and subscriptions.
type fakeBus struct {
	pubs []published
	subs []*session.Subscription
}

func (b *fakeBus) Publish(topic, payload string) {
	b.pubs = append(b.pubs, published{topic: topic, payload: payload})
}

func (b *fakeBus) Subscribe(sub *session.Subscription) { b.subs = append(b.subs, sub) }

func (b *fakeBus) Unsubscribe(sub *session.Subscription) {
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// on returns the payloads published on topic, in order.
func (b *fakeBus) on(topic string) []string {
	var out []string
	for _, p := range b.pubs {
		if p.topic == topic {
			out = append(out, p.payload)
		}
	}
	return out
}

// fakeSystem records escalations.
type fakeSystem struct {
	resets      []string
	maintenance []string
	updates     int
	mode        string
}

func (f *fakeSystem) Reset(reason string)            { f.resets = append(f.resets, reason) }
func (f *fakeSystem) EnterMaintenance(reason string) { f.maintenance = append(f.maintenance, reason); f.mode = "maintenance" }
func (f *fakeSystem) RequestUpdate()                 { f.updates++ }
func (f *fakeSystem) Mode() string {
	if f.mode == "" {
		return "normal"
	}
	return f.mode
}

func testEnv() (skill.Env, *fakeBus, *fakeSystem) {
	bus := &fakeBus{}
	sys := &fakeSystem{}
	return skill.Env{Channel: "std", DeviceID: "dev1", Bus: bus, System: sys}, bus, sys
}

func intPtr(v int) *int { return &v }

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
