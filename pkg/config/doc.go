// Package config loads typed configuration from the environment and from
// YAML files.
//
// Load parses environment variables into a struct using caarlos0/env tags.
// A .env file in the working directory is loaded once, on first use, without
// overriding variables that are already set. Every configuration type is
// parsed once per process and served from a cache afterwards, so packages can
// call Load for the same type independently.
//
// LoadYAML reads structured data that does not fit environment variables,
// such as the tenant to database table.
//
// # Usage
//
//	type Config struct {
//		Addr    string        `env:"HTTP_ADDR" envDefault:":8080"`
//		Timeout time.Duration `env:"TENANT_HANDSHAKE_TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
//	var table map[string]string
//	if err := config.LoadYAML("tenants.yaml", &table); err != nil {
//		return err
//	}
//
// # Error Handling
//
// Errors are joined with ErrParsingConfig, ErrLoadingEnvFile, ErrReadingFile
// or ErrParsingFile and can be matched with errors.Is.
package config
