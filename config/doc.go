// Package config loads runtime settings for hosted halcore tools.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("halcore.yaml").
//	    WithEnvPrefix("HALCORE").
//	    Load()
//
// Precedence: defaults, then the YAML file, then environment variables.
package config
