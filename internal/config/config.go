package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/richard-senior/fixturecast/internal/logger"
	"github.com/richard-senior/fixturecast/pkg/fixturecast"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "FIXTURECAST_CONFIG"
	apiKeyEnv     = "FOOTBALL_API_KEY"
	dbDriverEnv   = "FIXTURECAST_DB_DRIVER"
	dbDSNEnv      = "FIXTURECAST_DB"
	redisURLEnv   = "REDIS_URL"
	seasonEnv     = "FIXTURECAST_SEASON"
	logLevelEnv   = "FIXTURECAST_LOG_LEVEL"
	logFileEnv    = "FIXTURECAST_LOG_FILE"
)

// Config is the command line configuration: the predictor settings plus logging
type Config struct {
	fixturecast.Config `yaml:",inline"`

	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"` // empty logs to the console
}

// Level parses LogLevel, defaulting to INFO
func (c *Config) Level() logger.LogLevel {
	return logger.ParseLevel(c.LogLevel)
}

// Load starts from the defaults, overlays the YAML file at path (or at
// $FIXTURECAST_CONFIG when path is empty) and then applies environment overrides.
// A missing file is only an error when it was named explicitly.
func Load(path string) (*Config, error) {
	cfg := &Config{Config: *fixturecast.DefaultConfig(), LogLevel: "info"}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(configPathEnv)
		explicit = path != ""
	}
	if path == "" {
		path = "fixturecast.yaml"
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.Source.APIKey = v
	}
	if v := os.Getenv(dbDriverEnv); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv(dbDSNEnv); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv(redisURLEnv); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv(seasonEnv); v != "" {
		season, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a year: %w", seasonEnv, err)
		}
		c.Source.Season = season
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(logFileEnv); v != "" {
		c.LogFile = v
	}
	return nil
}
