package config

import "errors"

var (
	// ErrParsingConfig indicates the environment could not be parsed into
	// the requested struct (missing required variables, bad values).
	ErrParsingConfig = errors.New("failed to parse environment into config struct")
)
