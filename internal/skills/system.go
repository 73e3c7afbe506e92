package skills

import (
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Keywords accepted on gen/cmd.
const (
	CommandReset  = "reset"
	CommandRepl   = "repl"
	CommandUpdate = "update"
	CommandInfo   = "info"
)

// System handles node-level commands and publishes firmware identity.
// It is the only skill left running in maintenance mode.
type System struct {
	skill.Base

	fw Firmware

	cmdTopic  string
	infoTopic string
	queue     []string

	pubIdent *session.Publication
	pubDesc  *session.Publication
	pubMode  *session.Publication
}

// NewSystem builds the system skill.
func NewSystem(env skill.Env, cfg Config, fw Firmware) *System {
	cfg.Kind = skill.KindSystem
	cfg = cfg.withDefaults()
	s := &System{
		Base: skill.NewBase(env, skill.KindSystem, cfg.Entity, cfg.Period),
		fw:   fw,
	}
	s.cmdTopic = s.Listen(s, "gen/cmd")
	s.infoTopic = s.Listen(s, "gen/info")
	s.pubIdent = s.Publication("gen/fwident")
	s.pubDesc = s.Publication("gen/desc")
	s.pubMode = s.Publication("gen/mode")
	return s
}

// Start queues an info publish so the node announces itself on boot.
func (s *System) Start() error {
	s.queue = append(s.queue[:0], CommandInfo)
	s.ResetTimer()
	s.Attach()
	return nil
}

// OnMessage queues a command. Unknown keywords are rejected.
func (s *System) OnMessage(topic, payload string) error {
	switch topic {
	case s.infoTopic:
		s.queue = append(s.queue, CommandInfo)
	case s.cmdTopic:
		kw := strings.ToLower(strings.TrimSpace(payload))
		switch kw {
		case CommandReset, CommandRepl, CommandUpdate, CommandInfo:
			s.queue = append(s.queue, kw)
		default:
			return fmt.Errorf("%w: command %q", skill.ErrInvalidPayload, payload)
		}
	default:
		return fmt.Errorf("%w: %s", skill.ErrUnexpectedTopic, topic)
	}
	return nil
}

// Tick executes at most one queued command.
func (s *System) Tick(now time.Time) error {
	if !s.Due(now) || len(s.queue) == 0 {
		return nil
	}
	kw := s.queue[0]
	s.queue = s.queue[1:]

	sys := s.Env().System
	switch kw {
	case CommandReset:
		if sys != nil {
			sys.Reset("reset command received")
		}
	case CommandRepl:
		if sys != nil {
			sys.EnterMaintenance("repl command received")
		}
		s.publishMode()
	case CommandUpdate:
		if sys != nil {
			sys.RequestUpdate()
		}
	case CommandInfo:
		s.Send(s.pubIdent, s.fw.Ident())
		s.Send(s.pubDesc, s.fw.Description)
		s.publishMode()
	}
	s.Log().Info("system command executed", "command", kw)
	return nil
}

func (s *System) publishMode() {
	mode := "normal"
	if sys := s.Env().System; sys != nil {
		mode = sys.Mode()
	}
	s.Send(s.pubMode, mode)
}

// Stop detaches the command topics.
func (s *System) Stop() error {
	s.Detach()
	return nil
}
