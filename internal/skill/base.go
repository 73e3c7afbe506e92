package skill

import (
	"time"

	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/topic"
)

// Base carries what every skill shares: identity, the period gate and the
// skill's subscriptions. Concrete skills embed it.
type Base struct {
	env    Env
	kind   Kind
	entity string
	period time.Duration

	lastFire time.Time
	fired    bool

	topics   topic.Builder
	subs     []*session.Subscription
	attached bool
	log      Logger
}

// NewBase returns a Base for a skill of kind on entity, firing every period.
func NewBase(env Env, kind Kind, entity string, period time.Duration) Base {
	name := string(kind)
	if entity != "" {
		name += "/" + entity
	}
	return Base{
		env:    env,
		kind:   kind,
		entity: entity,
		period: period,
		topics: env.Topics(entity),
		log:    withSkill(env.logger(), name),
	}
}

// Name returns kind or kind/entity.
func (b *Base) Name() string {
	if b.entity == "" {
		return string(b.kind)
	}
	return string(b.kind) + "/" + b.entity
}

// Kind returns the skill kind.
func (b *Base) Kind() Kind { return b.kind }

// Entity returns the entity name, possibly empty.
func (b *Base) Entity() string { return b.entity }

// Period returns the execution period.
func (b *Base) Period() time.Duration { return b.period }

// Env returns the construction context.
func (b *Base) Env() Env { return b.env }

// Topics returns the skill's topic builder.
func (b *Base) Topics() topic.Builder { return b.topics }

// Log returns the skill's logger.
func (b *Base) Log() Logger { return b.log }

// Due reports whether the period has elapsed since the last fire and, if
// so, records now as the new fire time. The first call after ResetTimer is
// always due.
func (b *Base) Due(now time.Time) bool {
	if b.fired && now.Sub(b.lastFire) < b.period {
		return false
	}
	b.lastFire = now
	b.fired = true
	return true
}

// ResetTimer makes the next Due call fire immediately.
func (b *Base) ResetTimer() {
	b.fired = false
	b.lastFire = time.Time{}
}

// LastFire returns the last time Due fired.
func (b *Base) LastFire() time.Time { return b.lastFire }

// Listen declares a request topic owned by h and returns the full topic.
// The subscription reaches the bus on Attach.
func (b *Base) Listen(h session.Handler, suffix string) string {
	t := b.topics.Request(suffix)
	b.subs = append(b.subs, session.NewSubscription(t, h))
	return t
}

// Subscriptions returns the skill's subscriptions.
func (b *Base) Subscriptions() []*session.Subscription { return b.subs }

// Attach registers every declared subscription with the bus.
func (b *Base) Attach() {
	if b.attached || b.env.Bus == nil {
		return
	}
	for _, sub := range b.subs {
		b.env.Bus.Subscribe(sub)
	}
	b.attached = true
}

// Detach removes the skill's subscriptions from the bus.
func (b *Base) Detach() {
	if !b.attached {
		return
	}
	for _, sub := range b.subs {
		b.env.Bus.Unsubscribe(sub)
	}
	b.attached = false
}

// Publication creates a publication on the status topic for suffix.
func (b *Base) Publication(suffix string) *session.Publication {
	return session.NewPublication(b.topics.Status(suffix))
}

// Send publishes payload on p through the bus.
func (b *Base) Send(p *session.Publication, payload string) {
	if b.env.Bus == nil {
		return
	}
	p.Send(b.env.Bus, payload)
}

type skillLogger struct {
	next Logger
	name string
}

func withSkill(l Logger, name string) Logger {
	return skillLogger{next: l, name: name}
}

func (l skillLogger) Debug(msg string, args ...any) { l.next.Debug(msg, append(args, "skill", l.name)...) }
func (l skillLogger) Info(msg string, args ...any)  { l.next.Info(msg, append(args, "skill", l.name)...) }
func (l skillLogger) Warn(msg string, args ...any)  { l.next.Warn(msg, append(args, "skill", l.name)...) }
func (l skillLogger) Error(msg string, args ...any) { l.next.Error(msg, append(args, "skill", l.name)...) }
