package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-node/internal/journal"
	"github.com/nerrad567/gray-logic-node/internal/node"
	"github.com/nerrad567/gray-logic-node/internal/session"
	"github.com/nerrad567/gray-logic-node/internal/skills"
	_ "github.com/nerrad567/gray-logic-node/migrations"
)

// journalLevel is the lowest level copied into the event journal.
const journalLevel = slog.LevelWarn

// healthCheckTimeout bounds each startup health check.
const healthCheckTimeout = 5 * time.Second

func runCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the node until interrupted or reset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd.Context(), opts.configPath)
		},
	}
}

// runNode is the node lifecycle, separated from the command for testability.
func runNode(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Default()
	log.Info("starting Gray Logic node",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "device", cfg.Device.ID)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := checkDatabase(ctx, db); err != nil {
		return err
	}

	plain := log
	log, events := attachJournal(log, db, cfg.Database.JournalLimit)

	if last, ok, lastErr := events.LastReset(ctx); lastErr != nil {
		log.Warn("reading last reset failed", "error", lastErr)
	} else if ok {
		log.Info("previous reset", "at", last.Time, "detail", last.Attrs)
	}

	var mirror session.Mirror
	if influxClient := connectMirror(ctx, cfg, log, plain); influxClient != nil {
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		mirror = influxClient
	}

	fw := skills.Firmware{
		PartNumber:  cfg.Device.Firmware.PartNumber,
		Qualifier:   cfg.Device.Firmware.Qualifier,
		Version:     version,
		Description: cfg.Device.Firmware.Description,
	}

	n, err := node.New(cfg, fw, node.Deps{Mirror: mirror, Logger: log})
	if err != nil {
		return fmt.Errorf("building node: %w", err)
	}
	return n.Run(ctx)
}

// attachJournal copies warnings and above into the event journal. Journal
// write failures go to the plain logger so they cannot recurse.
func attachJournal(log *logging.Logger, db *database.DB, limit int) (*logging.Logger, *journal.Journal) {
	events := journal.New(db.DB, limit)
	events.SetOnError(func(err error) {
		log.Error("journal write failed", "error", err)
	})
	return log.WithSink(events, journalLevel), events
}

// checkDatabase verifies the database answers queries.
func checkDatabase(ctx context.Context, db *database.DB) error {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := db.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// connectMirror connects the optional InfluxDB mirror. It returns nil when
// the mirror is disabled, unreachable or unhealthy; the node runs without it.
func connectMirror(ctx context.Context, cfg *config.Config, log, plain *logging.Logger) *influxdb.Client {
	if !cfg.InfluxDB.Enabled {
		log.Info("telemetry mirror disabled")
		return nil
	}
	client, err := influxdb.Connect(ctx, cfg.InfluxDB, cfg.Device.ID)
	if err != nil {
		log.Warn("telemetry mirror unavailable", "error", err)
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := client.HealthCheck(checkCtx); err != nil {
		log.Warn("telemetry mirror unhealthy", "error", err)
		_ = client.Close()
		return nil
	}

	client.SetOnError(func(err error) {
		plain.Error("InfluxDB write error", "error", err)
	})
	log.Info("telemetry mirror connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	return client
}

// openDatabase opens and migrates the journal database.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
