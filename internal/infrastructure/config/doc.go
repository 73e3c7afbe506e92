// Package config handles loading and validating node configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with GRAYLOGIC_NODE_* environment variables
//   - Deriving the MQTT client ID from the device ID
//   - Validation of required fields
//
// Broker credentials and tokens should come from the environment (or a
// .env file loaded by the command) rather than the YAML file.
//
// Usage:
//
//	cfg, err := config.Load("configs/node.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Device.ID)
package config
