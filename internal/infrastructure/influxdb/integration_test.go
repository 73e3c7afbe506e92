//go:build integration

package influxdb

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

// integrationConfig targets a local InfluxDB. GRAYLOGIC_NODE_INFLUXDB_URL
// and GRAYLOGIC_NODE_INFLUXDB_TOKEN override the defaults.
func integrationConfig() config.InfluxDBConfig {
	cfg := config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "graylogic-dev-token",
		Org:           "graylogic",
		Bucket:        "telemetry",
		BatchSize:     10,
		FlushInterval: 1,
	}
	if v := os.Getenv("GRAYLOGIC_NODE_INFLUXDB_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_INFLUXDB_TOKEN"); v != "" {
		cfg.Token = v
	}
	return cfg
}

func TestIntegration_MirrorWrite(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, integrationConfig(), "it-node")
	if err != nil {
		t.Skipf("InfluxDB not available: %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	if err := client.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	var mu sync.Mutex
	var writeErr error
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})

	client.Mirror("std/it-node/s/dht/temp", "21.5")
	client.Mirror("std/it-node/s/motion/state", "ON")
	client.Flush()
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("async write error = %v", writeErr)
	}
}
