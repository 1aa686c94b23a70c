// Package config provides configuration parsing and validation for muti-ping.
package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/postalsys/muti-ping/internal/logging"
)

// MaxPayload is the largest echo payload that fits one IPv4 datagram
// (65535 minus the 20-byte IPv4 header and the 8-byte ICMP header).
const MaxPayload = 65535 - 20 - 8

// Config represents the complete pinger configuration.
type Config struct {
	Ping    PingConfig    `yaml:"ping"`
	Logging LoggingConfig `yaml:"logging"`
	Health  HealthConfig  `yaml:"health"`
	Output  OutputConfig  `yaml:"output"`
}

// PingConfig controls the echo session.
type PingConfig struct {
	Interval     time.Duration `yaml:"interval"`      // pause after each exchange
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // 0 = wait forever for a reply
	Count        int           `yaml:"count"`         // 0 = run until interrupted
	Payload      string        `yaml:"payload"`       // echo data
	Identifier   string        `yaml:"identifier"`    // "auto" or a 16-bit number
	TTL          int           `yaml:"ttl"`           // outgoing IPv4 TTL
	MatchReplies bool          `yaml:"match_replies"` // only report replies to our own requests
}

// LoggingConfig selects the diagnostic logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// HealthConfig defines the optional health and metrics HTTP server.
type HealthConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// OutputConfig controls the ping lines printed to stdout.
type OutputConfig struct {
	Color string `yaml:"color"` // auto, always, never
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Ping: PingConfig{
			Interval:   time.Second,
			Payload:    "Hello, world",
			Identifier: "auto",
			TTL:        64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Health: HealthConfig{
			Enabled:      false,
			Address:      "127.0.0.1:9108",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses configuration from YAML bytes on top of Default().
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envVarRegex matches ${VAR}, ${VAR:-default} or $VAR.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars replaces environment variable references with their values.
// Unknown variables without a default are left untouched.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")

		varName, defaultVal, hasDefault := strings.Cut(name, ":-")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		if hasDefault {
			return defaultVal
		}
		return match
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	p := c.Ping
	if p.Interval <= 0 {
		errs = append(errs, "ping.interval must be positive")
	}
	if p.ReadTimeout < 0 {
		errs = append(errs, "ping.read_timeout must not be negative")
	}
	if p.Count < 0 {
		errs = append(errs, "ping.count must not be negative")
	}
	if len(p.Payload) > MaxPayload {
		errs = append(errs, fmt.Sprintf("ping.payload exceeds %d bytes", MaxPayload))
	}
	if p.TTL < 1 || p.TTL > 255 {
		errs = append(errs, "ping.ttl must be between 1 and 255")
	}
	if _, err := ParseIdentifier(p.Identifier, 0); err != nil {
		errs = append(errs, fmt.Sprintf("ping.identifier: %v", err))
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level))
	}
	if !logging.ValidFormat(c.Logging.Format) {
		errs = append(errs, fmt.Sprintf("invalid logging.format: %s (must be text or json)", c.Logging.Format))
	}

	if c.Health.Enabled {
		if _, _, err := net.SplitHostPort(c.Health.Address); err != nil {
			errs = append(errs, fmt.Sprintf("health.address: %v", err))
		}
	}

	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Sprintf("invalid output.color: %s (must be auto, always, or never)", c.Output.Color))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ParseIdentifier resolves the configured echo identifier.
// "auto" (or empty) derives it from pid; otherwise s is a decimal or 0x-prefixed u16.
func ParseIdentifier(s string, pid int) (uint16, error) {
	if s == "" || strings.EqualFold(s, "auto") {
		return uint16(pid & 0xffff), nil
	}

	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier %q: must be auto or 0-65535", s)
	}
	return uint16(v), nil
}

// String returns the configuration as YAML.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return string(data)
}
