// Package config handles loading and validating exporter configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Access tokens should be set via environment variables
//   - Inside a Supervisor add-on the SUPERVISOR_TOKEN variable is picked up
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.HomeAssistant.URL)
package config
