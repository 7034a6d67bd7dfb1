package settings

import (
	"smartfilter/logger"
)

type (
	Config struct {
		Networks map[string]Network `toml:"networks" validate:"required,min=1,dive"`
		Filter   Filter             `toml:"filter" validate:"required"`
		Store    Store              `toml:"store"`
		Logging  logger.Config      `toml:"logging" validate:"required"`
	}

	Network struct {
		Enabled  bool     `toml:"enabled"`
		Nick     string   `toml:"nick" validate:"required"`
		User     string   `toml:"user"`
		Name     string   `toml:"name"`
		Version  string   `toml:"version"`
		Channels []string `toml:"channels"`
		Servers  []Server `toml:"servers" validate:"dive"`
	}

	Server struct {
		Host          string `toml:"host" validate:"required"`
		Port          int    `toml:"port" validate:"required"`
		SSL           bool   `toml:"ssl"`
		SkipSslVerify bool   `toml:"skipSslVerify"`
	}

	// Filter configures the suppression engine. Empty Networks/Channels
	// allow-lists mean the filter runs everywhere.
	Filter struct {
		ThresholdSeconds int      `toml:"thresholdSeconds" validate:"gte=1"`
		SweepSeconds     int      `toml:"sweepSeconds" validate:"gte=1"`
		Networks         []string `toml:"networks"`
		Channels         []string `toml:"channels"`
		Notify           []string `toml:"notify"`
		Managers         []string `toml:"managers"`
	}

	Store struct {
		Path string `toml:"path"`
	}
)
