package agent

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// Defaults applied to a config that leaves the field empty
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxIdle      = time.Minute
	DefaultStagger      = 2 * time.Second
	DefaultJitter       = 3 * time.Second
	DefaultJobTimeout   = 120 * time.Second
	DefaultListen       = ":5000"
)

// BackendType selects how a backend extracts listings
type BackendType string

// Backend types
const (
	BackendExec BackendType = "exec"
	BackendHTTP BackendType = "http"
)

// Config is the agent configuration file
type Config struct {
	WorkerID string `yaml:"workerId"`
	// Server is the acquisition API the agent polls and calls back
	Server ServerConfig `yaml:"server"`
	// Listen is the push mode listen address
	Listen       string          `yaml:"listen"`
	PollInterval time.Duration   `yaml:"pollInterval"`
	MaxIdle      time.Duration   `yaml:"maxIdle"`
	Stagger      time.Duration   `yaml:"stagger"`
	Jitter       time.Duration   `yaml:"jitter"`
	JobTimeout   time.Duration   `yaml:"jobTimeout"`
	Backends     []BackendConfig `yaml:"backends"`
}

// ServerConfig locates the acquisition API
type ServerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// BackendConfig describes one extraction routine. Retailer selects the
// retailer filter handed to the backend.
type BackendConfig struct {
	Name     string            `yaml:"name"`
	Retailer string            `yaml:"retailer"`
	Type     BackendType       `yaml:"type"`
	Command  []string          `yaml:"command"`
	Dir      string            `yaml:"dir"`
	Env      []string          `yaml:"env"`
	URL      string            `yaml:"url"`
	Headers  map[string]string `yaml:"headers"`
	// MaxResults is passed to exec backends after the filters argument
	MaxResults int `yaml:"maxResults"`
}

// ParseConfig decodes a YAML config and fills in defaults
func ParseConfig(data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("agent: config is empty")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("agent: decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads a YAML config file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent: read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("agent: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.WorkerID == "" {
		c.WorkerID = "agent-" + uuid.NewString()
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxIdle <= 0 {
		c.MaxIdle = DefaultMaxIdle
	}
	if c.MaxIdle < c.PollInterval {
		c.MaxIdle = c.PollInterval
	}
	if c.Stagger < 0 {
		c.Stagger = 0
	} else if c.Stagger == 0 {
		c.Stagger = DefaultStagger
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	} else if c.Jitter == 0 {
		c.Jitter = DefaultJitter
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = DefaultJobTimeout
	}
	for i := range c.Backends {
		b := &c.Backends[i]
		if b.Retailer == "" {
			b.Retailer = b.Name
		}
		if b.Type == "" {
			b.Type = BackendExec
		}
	}
}

// Validate checks the backend list
func (c *Config) Validate() error {
	if len(c.Backends) == 0 {
		return fmt.Errorf("agent: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("agent: backend name cannot be empty")
		}
		if _, ok := seen[b.Name]; ok {
			return fmt.Errorf("agent: duplicate backend %q", b.Name)
		}
		seen[b.Name] = struct{}{}
		if !vehicle.RetailerID(b.Retailer).IsValid() {
			return fmt.Errorf("agent: backend %q: unknown retailer %q", b.Name, b.Retailer)
		}
		switch b.Type {
		case BackendExec:
			if len(b.Command) == 0 {
				return fmt.Errorf("agent: backend %q: command is required", b.Name)
			}
		case BackendHTTP:
			if b.URL == "" {
				return fmt.Errorf("agent: backend %q: url is required", b.Name)
			}
		default:
			return fmt.Errorf("agent: backend %q: unknown type %q", b.Name, b.Type)
		}
	}
	return nil
}
