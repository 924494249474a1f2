// Package config loads typed configuration structs from environment
// variables, optionally seeded from a .env file in development.
//
// Each subsystem declares its own Config struct with `env` tags and loads
// it independently:
//
//	type Config struct {
//		Addr    string        `env:"HTTP_ADDR" envDefault:":8080"`
//		Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
//	}
//
//	cfg, err := config.Load[Config]()
//
// The .env file is read at most once per process; missing files are not an
// error. Parsing failures report which struct type failed so startup errors
// point at the offending subsystem.
package config
