package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	want := PingConfig{
		Interval:   time.Second,
		Payload:    "Hello, world",
		Identifier: "auto",
		TTL:        64,
	}
	if diff := cmp.Diff(want, cfg.Ping); diff != "" {
		t.Errorf("Default().Ping mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
	if cfg.Health.Enabled {
		t.Error("Health should be disabled by default")
	}
	if cfg.Output.Color != "auto" {
		t.Errorf("Output.Color = %s, want auto", cfg.Output.Color)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestParse_ValidConfig(t *testing.T) {
	yamlConfig := `
ping:
  interval: 250ms
  read_timeout: 2s
  count: 5
  payload: "muti"
  identifier: "0x1234"
  ttl: 32
  match_replies: true

logging:
  level: debug
  format: json

health:
  enabled: true
  address: "127.0.0.1:9200"

output:
  color: never
`

	cfg, err := Parse([]byte(yamlConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := PingConfig{
		Interval:     250 * time.Millisecond,
		ReadTimeout:  2 * time.Second,
		Count:        5,
		Payload:      "muti",
		Identifier:   "0x1234",
		TTL:          32,
		MatchReplies: true,
	}
	if diff := cmp.Diff(want, cfg.Ping); diff != "" {
		t.Errorf("Ping mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if !cfg.Health.Enabled || cfg.Health.Address != "127.0.0.1:9200" {
		t.Errorf("Health = %+v", cfg.Health)
	}
	// Unset fields keep their defaults
	if cfg.Health.ReadTimeout != 10*time.Second {
		t.Errorf("Health.ReadTimeout = %v, want 10s", cfg.Health.ReadTimeout)
	}
	if cfg.Output.Color != "never" {
		t.Errorf("Output.Color = %s, want never", cfg.Output.Color)
	}
}

func TestParse_EmptyConfig(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("empty config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("ping: [unclosed"))
	if err == nil {
		t.Fatal("Parse() should fail for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantError string
	}{
		{"zero interval", "ping:\n  interval: 0s\n", "ping.interval must be positive"},
		{"negative timeout", "ping:\n  read_timeout: -1s\n", "ping.read_timeout"},
		{"negative count", "ping:\n  count: -1\n", "ping.count"},
		{"ttl too large", "ping:\n  ttl: 256\n", "ping.ttl"},
		{"ttl zero", "ping:\n  ttl: 0\n", "ping.ttl"},
		{"bad identifier", "ping:\n  identifier: \"70000\"\n", "ping.identifier"},
		{"bad log level", "logging:\n  level: trace\n", "invalid logging.level"},
		{"bad log format", "logging:\n  format: xml\n", "invalid logging.format"},
		{"health without port", "health:\n  enabled: true\n  address: localhost\n", "health.address"},
		{"bad color", "output:\n  color: rainbow\n", "invalid output.color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantError)
			}
		})
	}
}

func TestValidate_PayloadTooLarge(t *testing.T) {
	cfg := Default()
	cfg.Ping.Payload = strings.Repeat("x", MaxPayload+1)

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ping.payload") {
		t.Errorf("Validate() error = %v, want payload error", err)
	}

	cfg.Ping.Payload = strings.Repeat("x", MaxPayload)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v for max payload", err)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_PING_PAYLOAD", "from-env")
	t.Setenv("TEST_PING_TTL", "12")

	yamlConfig := `
ping:
  payload: "${TEST_PING_PAYLOAD}"
  ttl: $TEST_PING_TTL
`

	cfg, err := Parse([]byte(yamlConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Ping.Payload != "from-env" {
		t.Errorf("Payload = %s, want from-env", cfg.Ping.Payload)
	}
	if cfg.Ping.TTL != 12 {
		t.Errorf("TTL = %d, want 12", cfg.Ping.TTL)
	}
}

func TestParse_EnvVarDefaultValue(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR")

	cfg, err := Parse([]byte(`ping: {payload: "${NONEXISTENT_VAR:-fallback}"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Ping.Payload != "fallback" {
		t.Errorf("Payload = %s, want fallback", cfg.Ping.Payload)
	}
}

func TestParse_EnvVarNotFound(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR")

	cfg, err := Parse([]byte(`ping: {payload: "${NONEXISTENT_VAR}"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// Unknown variables are left as written
	if cfg.Ping.Payload != "${NONEXISTENT_VAR}" {
		t.Errorf("Payload = %s, want ${NONEXISTENT_VAR}", cfg.Ping.Payload)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() should fail for nonexistent file")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in      string
		pid     int
		want    uint16
		wantErr bool
	}{
		{"auto", 4242, 4242, false},
		{"AUTO", 4242, 4242, false},
		{"", 70000, 70000 & 0xffff, false},
		{"0", 1, 0, false},
		{"65535", 1, 65535, false},
		{"0xbeef", 1, 0xbeef, false},
		{"65536", 1, 0, true},
		{"-1", 1, 0, true},
		{"ping", 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIdentifier(tt.in, tt.pid)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIdentifier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseIdentifier(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfig_StringRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Ping.Count = 3

	parsed, err := Parse([]byte(cfg.String()))
	if err != nil {
		t.Fatalf("Parse(String()) error = %v", err)
	}
	if diff := cmp.Diff(cfg, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
