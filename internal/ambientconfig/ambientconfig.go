// Package ambientconfig is deployd's own bootstrap configuration: where
// its database lives, how many workers it runs, which environment
// namespace it operates in. This is distinct from the external,
// hierarchical Config collaborator (§6.3, internal/appconfig.Loader)
// that supplies one application's evaluated deploy configuration —
// ambientconfig governs the daemon process itself, the way the teacher's
// internal/config governs the choo CLI process (DefaultConfig,
// yaml.v3-backed LoadConfig tolerating a missing file).
package ambientconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is deployd's own settings, loaded from a YAML file or defaulted.
type Config struct {
	Env            string        `yaml:"env"`
	DBPath         string        `yaml:"db_path"`
	ConfigRoot     string        `yaml:"config_root"`
	Workers        int           `yaml:"workers"`
	JobRetention   time.Duration `yaml:"job_retention"`
	ReaperInterval time.Duration `yaml:"reaper_interval"`
	LockTTL        time.Duration `yaml:"lock_ttl"`
	FreezeTTL      time.Duration `yaml:"freeze_ttl"`
}

// Default returns deployd's out-of-the-box configuration.
func Default() *Config {
	return &Config{
		Env:            "prod",
		DBPath:         "deployd.db",
		ConfigRoot:     "./config",
		Workers:        8,
		JobRetention:   4 * 7 * 24 * time.Hour,
		ReaperInterval: time.Hour,
		LockTTL:        600 * time.Second,
		FreezeTTL:      86400 * time.Second,
	}
}

// Load reads path as YAML over the defaults, tolerating a missing file
// the way the teacher's LoadGlobalConfigFromPath does.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ambientconfig: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ambientconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("ambientconfig: workers must be positive, got %d", c.Workers)
	}
	if c.DBPath == "" {
		return fmt.Errorf("ambientconfig: db_path must be set")
	}
	return nil
}
