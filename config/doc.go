// Package config provides configuration loading and validation for userload.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (USERLOAD_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with USERLOAD_ prefix:
//   - database.host → USERLOAD_DATABASE_HOST
//   - database.password → USERLOAD_DATABASE_PASSWORD
//   - source.count → USERLOAD_SOURCE_COUNT
//
// # State File
//
// The name of the database used by the last run is kept in a small JSON file:
//
//	{"last_active_db": "default_db0"}
//
// LoadState reads it and SaveState rewrites it after a database was resolved.
package config
