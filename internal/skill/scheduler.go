package skill

import (
	"fmt"
	"time"
)

// Dispatcher delivers at most one pending inbound message per call.
// *session.Session satisfies it.
type Dispatcher interface {
	DispatchOne() bool
}

type entry struct {
	skill   Skill
	running bool
}

// Scheduler owns the ordered set of skills and drives them cooperatively.
// Insertion order is execution order. It is not safe for concurrent use.
type Scheduler struct {
	entries    []*entry
	dispatcher Dispatcher
	logger     Logger
}

// NewScheduler returns an empty scheduler that pulls inbound messages
// from d. d may be nil.
func NewScheduler(d Dispatcher) *Scheduler {
	return &Scheduler{dispatcher: d, logger: noopLogger{}}
}

// SetLogger sets the logger.
func (s *Scheduler) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	s.logger = l
}

// Add appends sk to the execution order.
func (s *Scheduler) Add(sk Skill) {
	s.entries = append(s.entries, &entry{skill: sk})
}

// Skills returns the skills in execution order.
func (s *Scheduler) Skills() []Skill {
	out := make([]Skill, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.skill)
	}
	return out
}

// Running reports whether the named skill is started.
func (s *Scheduler) Running(name string) bool {
	for _, e := range s.entries {
		if e.skill.Name() == name {
			return e.running
		}
	}
	return false
}

// StartAll starts every stopped skill in order. A skill whose Start fails
// stays stopped; the others still start.
func (s *Scheduler) StartAll() {
	for _, e := range s.entries {
		if e.running {
			continue
		}
		if err := s.guard(e.skill, "start", e.skill.Start); err != nil {
			s.logger.Error("skill start failed", "skill", e.skill.Name(), "error", err)
			continue
		}
		e.running = true
		s.logger.Info("skill started", "skill", e.skill.Name(), "kind", string(e.skill.Kind()))
	}
}

// TickAll ticks every running skill once, in order. Errors and panics are
// logged per skill and never stop the pass.
func (s *Scheduler) TickAll(now time.Time) {
	for _, e := range s.entries {
		if !e.running {
			continue
		}
		sk := e.skill
		if err := s.guard(sk, "tick", func() error { return sk.Tick(now) }); err != nil {
			s.logger.Warn("skill tick failed", "skill", sk.Name(), "error", err)
		}
	}
}

// Pass dispatches at most one inbound message then ticks every skill.
func (s *Scheduler) Pass(now time.Time) {
	if s.dispatcher != nil {
		s.dispatcher.DispatchOne()
	}
	s.TickAll(now)
}

// StopAll stops every running skill in order.
func (s *Scheduler) StopAll() {
	s.StopWhere(func(Skill) bool { return true })
}

// StopWhere stops every running skill for which match returns true.
func (s *Scheduler) StopWhere(match func(Skill) bool) {
	for _, e := range s.entries {
		if !e.running || !match(e.skill) {
			continue
		}
		e.running = false
		if err := s.guard(e.skill, "stop", e.skill.Stop); err != nil {
			s.logger.Error("skill stop failed", "skill", e.skill.Name(), "error", err)
			continue
		}
		s.logger.Info("skill stopped", "skill", e.skill.Name())
	}
}

// guard runs fn converting a panic into an error.
func (s *Scheduler) guard(sk Skill, op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s %s: panic: %v", op, sk.Name(), r)
		}
	}()
	return fn()
}
