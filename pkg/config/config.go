package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `yaml:"app"`
	Server    ServerConfig              `yaml:"server"`
	Gateways  map[string]GatewayConfig  `yaml:"gateways"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Memory    MemoryConfig              `yaml:"memory"`
	Cache     CacheConfig               `yaml:"cache"`
	Logging   LoggingConfig             `yaml:"logging"`
}

type AppConfig struct {
	Name          string  `yaml:"name"`
	Workspace     string  `yaml:"workspace"`
	PromptsDir    string  `yaml:"prompts_dir"`
	MinConfidence float64 `yaml:"min_confidence"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Enabled bool   `yaml:"enabled"`
}

type GatewayConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Enabled     bool    `yaml:"enabled"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	TopK        int     `yaml:"top_k"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type MemoryConfig struct {
	Path string `yaml:"path"`
}

type CacheConfig struct {
	MaxSize int      `yaml:"max_size"`
	TTL     Duration `yaml:"ttl"`
}

// Duration accepts Go duration strings ("30m", "1h") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	LogDir string `yaml:"log_dir"`
}

// Load reads and validates the YAML config file, applying defaults for
// optional sections.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Workspace == "" {
		c.App.Workspace = "workspace"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "labeeb.db"
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 1000
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(time.Hour)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.LogDir == "" {
		c.Logging.LogDir = "logs"
	}
}

// GetDefaultProvider returns the first enabled provider.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled.
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled {
		return tg, true
	}
	return GatewayConfig{}, false
}
