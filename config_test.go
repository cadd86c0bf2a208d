package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("port", "p", "", "")
	fs.IntP("baud", "b", 115200, "")
	fs.String("ssid", "", "")
	fs.String("host", "", "")
	fs.Int("osc-port", 4560, "")
	fs.String("protocol", "udp", "")
	fs.Int("retries", 1, "")
	fs.Duration("timeout", 0, "")
	fs.String("log-level", "info", "")
	fs.String("bind", "0.0.0.0:8080", "")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("unexpected error from Parse(): %v", err)
	}
	return fs
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oscgw.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		config, err := LoadConfig(WithDefaults())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.SerialPort != "/dev/ttyUSB0" || config.BaudRate != 115200 {
			t.Errorf("unexpected serial defaults: %s @ %d", config.SerialPort, config.BaudRate)
		}
		if config.OSCPort != 4560 || config.Protocol != "udp" {
			t.Errorf("unexpected OSC defaults: %s %d", config.Protocol, config.OSCPort)
		}
		if config.ATTimeout != 10*time.Second {
			t.Errorf("expected 10s timeout, got %s", config.ATTimeout)
		}
		if config.MaxRetries != 1 {
			t.Errorf("expected a single attempt by default, got %d", config.MaxRetries)
		}
	})

	t.Run("File overrides defaults", func(t *testing.T) {
		path := writeFile(t, `
wifi_ssid: studio
wifi_password: s3cret
osc_host: 192.168.1.20
osc_protocol: tcp
at_timeout: 2500ms
`)
		config, err := LoadConfig(WithDefaults(), WithFile(path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.SSID != "studio" || config.Password != "s3cret" {
			t.Errorf("unexpected network: %q / %q", config.SSID, config.Password)
		}
		if config.OSCHost != "192.168.1.20" || config.Protocol != "tcp" {
			t.Errorf("unexpected endpoint: %s %s", config.Protocol, config.OSCHost)
		}
		if config.ATTimeout != 2500*time.Millisecond {
			t.Errorf("expected 2.5s timeout, got %s", config.ATTimeout)
		}
		// Untouched keys keep their defaults
		if config.OSCPort != 4560 {
			t.Errorf("expected default OSC port, got %d", config.OSCPort)
		}
	})

	t.Run("Env overrides file, flags override env", func(t *testing.T) {
		path := writeFile(t, "wifi_ssid: from-file\nosc_host: file.local\nmax_retries: 2\n")
		t.Setenv("WIFI_SSID", "from-env")
		t.Setenv("OSC_HOST", "env.local")
		t.Setenv("AT_TIMEOUT", "3s")

		fs := testFlags(t, "--host", "flag.local", "--retries", "5")

		config, err := LoadConfig(WithDefaults(), WithFile(path), WithEnv(), WithFlags(fs))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.SSID != "from-env" {
			t.Errorf("expected SSID from env, got %q", config.SSID)
		}
		if config.OSCHost != "flag.local" {
			t.Errorf("expected host from flag, got %q", config.OSCHost)
		}
		if config.MaxRetries != 5 {
			t.Errorf("expected 5 retries from flag, got %d", config.MaxRetries)
		}
		if config.ATTimeout != 3*time.Second {
			t.Errorf("expected 3s timeout from env, got %s", config.ATTimeout)
		}
	})

	t.Run("Unset flags do not override", func(t *testing.T) {
		t.Setenv("OSC_PORT", "4557")

		config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(testFlags(t)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.OSCPort != 4557 {
			t.Errorf("expected OSC port from env, got %d", config.OSCPort)
		}
	})

	t.Run("Bridge from env only", func(t *testing.T) {
		t.Setenv("WS_URL", "ws://bridge.local/esp")
		t.Setenv("WS_USERNAME", "admin")
		t.Setenv("WS_PASSWORD", "hunter2")

		config, err := LoadConfig(WithDefaults(), WithEnv())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.WebSocketURL != "ws://bridge.local/esp" || config.WebSocketUsername != "admin" || config.WebSocketPassword != "hunter2" {
			t.Errorf("unexpected bridge settings: %q %q %q", config.WebSocketURL, config.WebSocketUsername, config.WebSocketPassword)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(WithDefaults(), WithFile(filepath.Join(t.TempDir(), "missing.yaml")))
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Invalid env value", func(t *testing.T) {
		t.Setenv("MAX_RETRIES", "many")

		if _, err := LoadConfig(WithDefaults(), WithEnv()); err == nil {
			t.Error("expected error for invalid MAX_RETRIES")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		config, _ := LoadConfig(WithDefaults())
		config.SSID = "studio"
		config.OSCHost = "192.168.1.20"
		return config
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no transport", func(c *Config) { c.SerialPort = "" }},
		{"no SSID", func(c *Config) { c.SSID = "" }},
		{"no host", func(c *Config) { c.OSCHost = "" }},
		{"port out of range", func(c *Config) { c.OSCPort = 70000 }},
		{"unknown protocol", func(c *Config) { c.Protocol = "sctp" }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"zero timeout", func(c *Config) { c.ATTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.modify(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
