// Command graylogic-node runs a Gray Logic sensor/actuator node.
//
// The node connects to the site MQTT broker, runs its configured skills
// and publishes telemetry under <channel>/<device>/s/. A requested reset
// exits with code 75 so the supervisor restarts the process.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nerrad567/gray-logic-node/internal/node"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.4.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	// defaultConfigPath is used when neither --config nor
	// GRAYLOGIC_NODE_CONFIG is set.
	defaultConfigPath = "configs/node.yaml"

	// exitReset tells the supervisor the node asked to be restarted.
	exitReset = 75
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, node.ErrResetRequested) {
		return exitReset
	}
	return 1
}
