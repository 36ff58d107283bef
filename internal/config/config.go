package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// RemapConfig overrides the comment user-id remap. Unset fields keep their defaults.
type RemapConfig struct {
	Disabled  bool   `yaml:"disabled"`
	Threshold *int64 `yaml:"threshold,omitempty"`
	Min       *int64 `yaml:"min,omitempty"`
	Max       *int64 `yaml:"max,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	DataDir    string           `yaml:"data_dir"`
	Timeout    string           `yaml:"timeout"`
	BcryptCost int              `yaml:"bcrypt_cost"`
	Remap      RemapConfig      `yaml:"remap"`
}

const ConfigFileName = "lmsseed.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", configPath, err, lmsseed.ErrInvalidConfig)
	}
	return &cfg, nil
}

// ParsedTimeout returns Timeout as a duration, or zero when unset.
func (c *ProjectConfig) ParsedTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout %q: %v: %w", c.Timeout, err, lmsseed.ErrInvalidConfig)
	}
	return d, nil
}

// Apply overlays the configured remap settings onto r.
func (c RemapConfig) Apply(r lmsseed.RemapConfig) lmsseed.RemapConfig {
	if c.Disabled {
		r.Disabled = true
	}
	if c.Threshold != nil {
		r.Threshold = *c.Threshold
	}
	if c.Min != nil {
		r.Min = *c.Min
	}
	if c.Max != nil {
		r.Max = *c.Max
	}
	return r
}
