package node

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skill"
	"github.com/nerrad567/gray-logic-node/internal/skills"
	"github.com/nerrad567/gray-logic-node/internal/topic"
)

// defaultIdleSleep is used when scheduler.idle_sleep is not set.
const defaultIdleSleep = 10 * time.Millisecond

// Logger defines the logging interface for the node.
// *logging.Logger and *slog.Logger satisfy it.
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

// Deps are the collaborators a Node is built from. Nil fields take
// defaults: an MQTT transport, the configured board, NoopUpdater and a
// no-op logger.
type Deps struct {
	Transport session.Transport
	Board     hal.Board
	Updater   Updater
	Mirror    session.Mirror
	Logger    Logger
}

// Node is one running sensor node.
type Node struct {
	cfg     *config.Config
	fw      skills.Firmware
	logger  Logger
	updater Updater
	board   hal.Board

	session   *session.Session
	scheduler *skill.Scheduler
	control   *control

	idleSleep time.Duration
	now       func() time.Time
	sleep     session.SleepFunc
}

// New wires a node from cfg. The system skill is always scheduled first,
// followed by cfg.Skills in order.
func New(cfg *config.Config, fw skills.Firmware, deps Deps) (*Node, error) {
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	board := deps.Board
	if board == nil {
		b, err := NewBoard(cfg.Hardware.Board)
		if err != nil {
			return nil, err
		}
		board = b
	}

	transport := deps.Transport
	if transport == nil {
		t := mqtt.New(mqtt.Options{
			QoS:         byte(cfg.MQTT.QoS), // #nosec G115 -- validated to 0..2
			StatusTopic: PresenceTopic(cfg),
			KeepAlive:   cfg.MQTT.KeepAlive,
			InboxSize:   cfg.MQTT.InboxSize,
		})
		t.SetLogger(logger)
		transport = t
	}

	updater := deps.Updater
	if updater == nil {
		updater = NoopUpdater{}
	}

	sess := session.New(transport, session.Config{
		Credentials:       credentials(cfg),
		ReconnectAttempts: cfg.Session.ReconnectAttempts,
		RetryUnit:         cfg.Session.RetryUnit,
	})
	sess.SetLogger(logger)
	if deps.Mirror != nil {
		sess.SetMirror(deps.Mirror)
	}

	ctl := newControl(logger)
	sched := skill.NewScheduler(sess)
	sched.SetLogger(logger)

	env := skill.Env{
		Channel:  cfg.Device.Channel,
		DeviceID: cfg.Device.ID,
		Bus:      sess,
		System:   ctl,
		Logger:   logger,
	}

	sched.Add(skills.NewSystem(env, skills.Config{}, fw))
	for i, sc := range cfg.Skills {
		sk, err := skills.Build(skillConfig(sc), env, board, fw)
		if err != nil {
			_ = board.Close()
			return nil, fmt.Errorf("building skill %d (%s): %w", i, sc.Kind, err)
		}
		sched.Add(sk)
	}

	idle := cfg.Scheduler.IdleSleep
	if idle <= 0 {
		idle = defaultIdleSleep
	}

	return &Node{
		cfg:       cfg,
		fw:        fw,
		logger:    logger,
		updater:   updater,
		board:     board,
		session:   sess,
		scheduler: sched,
		control:   ctl,
		idleSleep: idle,
		now:       time.Now,
		sleep:     sleepContext,
	}, nil
}

// PresenceTopic returns the retained online/offline topic of the node.
func PresenceTopic(cfg *config.Config) string {
	return topic.Publish(cfg.Device.Channel, cfg.Device.ID, "", "gen/online")
}

func credentials(cfg *config.Config) session.Credentials {
	return session.Credentials{
		ClientID: cfg.MQTT.Broker.ClientID,
		Host:     cfg.MQTT.Broker.Host,
		Port:     cfg.MQTT.Broker.Port,
		Username: cfg.MQTT.Auth.Username,
		Password: cfg.MQTT.Auth.Password,
		TLS:      cfg.MQTT.Broker.TLS,
	}
}

func skillConfig(sc config.SkillConfig) skills.Config {
	return skills.Config{
		Kind:              sc.Kind,
		Entity:            sc.Entity,
		Period:            sc.Period,
		Pin:               sc.Pin,
		PowerPin:          sc.PowerPin,
		LEDPin:            sc.LEDPin,
		LEDInverted:       sc.LEDInverted,
		PixelCount:        sc.PixelCount,
		SleepCycles:       sc.SleepCycles,
		Threshold:         sc.Threshold,
		HumidityThreshold: sc.HumidityThreshold,
		Samples:           sc.Samples,
		DarkLevel:         sc.DarkLevel,
		TempFactor:        sc.TempFactor,
		HumidityFactor:    sc.HumidityFactor,
		TriggerHigh:       sc.TriggerHigh,
		AutoOff:           sc.AutoOff,
		RateWindow:        sc.RateWindow,
		RateLimit:         sc.RateLimit,
		Location:          sc.Location,
		Address:           sc.Address,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Session returns the bus session.
func (n *Node) Session() *session.Session { return n.session }

// Scheduler returns the skill scheduler.
func (n *Node) Scheduler() *skill.Scheduler { return n.scheduler }

// Board returns the hardware board.
func (n *Node) Board() hal.Board { return n.board }

// Mode returns the current node mode.
func (n *Node) Mode() string { return n.control.Mode() }

// Run boots the node and drives the loop until ctx ends or a reset is
// requested. A cancelled ctx is a clean shutdown and returns nil.
func (n *Node) Run(ctx context.Context) error {
	n.logger.Info("node starting",
		"device", n.cfg.Device.ID,
		"channel", n.cfg.Device.Channel,
		"firmware", n.fw.Ident(),
		"skills", len(n.scheduler.Skills()),
	)

	if n.cfg.Update.Enabled {
		installed, err := n.updater.CheckAndInstall(ctx, n.cfg.Update.RepoURL)
		switch {
		case err != nil:
			n.logger.Warn("firmware update check failed", "error", err)
		case installed:
			n.control.Reset("firmware updated")
			n.shutdown()
			return fmt.Errorf("%w: %s", ErrResetRequested, n.control.resetReason)
		}
	}

	if err := n.session.Connect(ctx); err != nil {
		n.logger.Warn("initial connect failed, will retry", "error", err)
	}
	n.scheduler.StartAll()

	for {
		if ctx.Err() != nil {
			n.logger.Info("shutdown signal received")
			n.shutdown()
			return nil
		}

		if err := n.session.Maintain(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			if errors.Is(err, session.ErrReconnectExhausted) {
				n.logger.Warn("bus unreachable, retrying next pass", "error", err)
			}
		}

		if err := n.Pass(); err != nil {
			n.shutdown()
			return err
		}

		// A cancelled sleep is picked up at the top of the loop.
		_ = n.sleep(ctx, n.idleSleep)
	}
}

// Pass runs one scheduler pass and then applies any mode change or reset
// raised during it. It returns an error wrapping ErrResetRequested when a
// reset is pending.
func (n *Node) Pass() error {
	n.scheduler.Pass(n.now())

	if n.control.stopPending {
		n.control.stopPending = false
		n.scheduler.StopWhere(func(sk skill.Skill) bool {
			return sk.Kind() != skill.KindSystem
		})
	}
	if reason := n.control.resetReason; reason != "" {
		return fmt.Errorf("%w: %s", ErrResetRequested, reason)
	}
	return nil
}

// shutdown stops every skill, closes the bus and releases the board.
func (n *Node) shutdown() {
	n.scheduler.StopAll()
	n.session.Close()
	if err := n.board.Close(); err != nil {
		n.logger.Error("error closing board", "error", err)
	}
	n.logger.Info("node stopped")
}
