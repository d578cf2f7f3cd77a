// Package config handles loading and validating the album catalog configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with ALBUMCATALOG_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (DSNs, passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - The built-in JWT secret is a development placeholder and is refused in production
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.App.Name)
package config
