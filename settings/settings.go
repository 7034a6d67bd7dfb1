package settings

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	defaultThresholdSeconds = 3600
	defaultSweepSeconds     = 300
	defaultStorePath        = "notify.db"
)

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// LoadConfig loads the configuration from the given TOML file.
// It returns a pointer to the Config struct or an error if loading fails.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Get absolute path for better error messages
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		absPath = configPath // fallback to relative path
	}

	_, err = toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", absPath, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Filter.ThresholdSeconds == 0 {
		config.Filter.ThresholdSeconds = defaultThresholdSeconds
	}
	if config.Filter.SweepSeconds == 0 {
		config.Filter.SweepSeconds = defaultSweepSeconds
	}
	if config.Store.Path == "" {
		config.Store.Path = defaultStorePath
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
}

// GetRandomServer picks one of the network's servers to connect to.
func (n *Network) GetRandomServer() *Server {
	if len(n.Servers) == 0 {
		return nil
	}
	randomIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(n.Servers))))
	if err != nil {
		return &n.Servers[0]
	}
	return &n.Servers[randomIndex.Int64()]
}
