// Package skill defines the unit of behaviour run by the node and the
// cooperative scheduler that drives it.
//
// A skill is started once, ticked on every scheduler pass and stopped on
// shutdown or maintenance. Skills rate-limit themselves: the scheduler
// ticks every running skill on every pass and Base.Due decides whether the
// skill's period has elapsed.
package skill

import (
	"errors"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/topic"
)

// Kind enumerates the skills this firmware knows how to build.
type Kind string

const (
	KindSystem Kind = "system"
	KindDHT    Kind = "dht"
	KindLight  Kind = "light"
	KindMotion Kind = "motion"
	KindSwitch Kind = "switch"
	KindRelay  Kind = "relay"
	KindPixel  Kind = "pixel"
	KindBeacon Kind = "beacon"
)

// Kinds returns every known kind.
func Kinds() []Kind {
	return []Kind{KindSystem, KindDHT, KindLight, KindMotion, KindSwitch, KindRelay, KindPixel, KindBeacon}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

var (
	// ErrUnexpectedTopic is returned by OnMessage for a topic the skill
	// never subscribed to.
	ErrUnexpectedTopic = errors.New("skill: unexpected topic")

	// ErrInvalidPayload is returned by OnMessage for a payload that does
	// not decode. The skill's state is left unchanged.
	ErrInvalidPayload = errors.New("skill: invalid payload")
)

// Skill is one independently scheduled behaviour.
//
// Tick and OnMessage must not block. Stop leaves owned outputs
// de-energised; Start may be called again afterwards.
type Skill interface {
	Name() string
	Kind() Kind
	Start() error
	Tick(now time.Time) error
	OnMessage(topic, payload string) error
	Stop() error
}

// Bus is the messaging surface a skill uses. *session.Session satisfies it.
type Bus interface {
	Publish(topic, payload string)
	Subscribe(sub *session.Subscription)
	Unsubscribe(sub *session.Subscription)
}

// SystemControl lets a skill escalate to node-wide actions.
type SystemControl interface {
	// Reset asks the node to restart. It takes effect after the current pass.
	Reset(reason string)

	// EnterMaintenance stops every skill except the system skill.
	EnterMaintenance(reason string)

	// RequestUpdate records an update request and resets the node so the
	// boot-time updater runs.
	RequestUpdate()

	// Mode returns the current node mode, e.g. "normal" or "maintenance".
	Mode() string
}

// Logger defines the logging interface for skills.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Env is the context object every skill is constructed with.
type Env struct {
	Channel  string
	DeviceID string
	Bus      Bus
	System   SystemControl
	Logger   Logger
}

// Topics returns a topic builder for entity on this device.
func (e Env) Topics(entity string) topic.Builder {
	return topic.Builder{Channel: e.Channel, Device: e.DeviceID, Entity: entity}
}

func (e Env) logger() Logger {
	if e.Logger == nil {
		return noopLogger{}
	}
	return e.Logger
}
