package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"i4.energy/across/oscgw/modem"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the HTTP server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `yaml:"bind_address"`
	// SerialPort is the path to the module's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `yaml:"serial_port"`
	// BaudRate is the baud rate for serial communication with the module
	BaudRate int `yaml:"baud_rate"`
	// WebSocketURL reaches the module through a serial bridge instead of a
	// local port. Takes precedence over SerialPort when set.
	WebSocketURL string `yaml:"ws_url"`
	// WebSocketUsername enables HTTP Basic auth on the bridge
	WebSocketUsername string `yaml:"ws_username"`
	// WebSocketPassword is never read from a flag
	WebSocketPassword string `yaml:"ws_password"`
	// SSID is the access point to join
	SSID string `yaml:"wifi_ssid"`
	// Password is the access point passphrase. It is never read from a flag.
	Password string `yaml:"wifi_password"`
	// OSCHost and OSCPort address the OSC server (Sonic Pi listens on 4560)
	OSCHost string `yaml:"osc_host"`
	OSCPort int    `yaml:"osc_port"`
	// Protocol is "udp" or "tcp"
	Protocol string `yaml:"osc_protocol"`
	// MaxRetries is how many times each module operation is attempted
	MaxRetries int `yaml:"max_retries"`
	// ATTimeout bounds a single attempt of a module operation
	ATTimeout time.Duration `yaml:"at_timeout"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.OSCPort = 4560
		c.Protocol = "udp"
		c.MaxRetries = modem.DefaultMaxRetries
		c.ATTimeout = modem.DefaultATTimeout
		c.LogLevel = "info"
		return nil
	}
}

// WithFile loads configuration from a YAML file. Keys missing from the file
// keep their current value. An empty path is ignored.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			b, err := strconv.Atoi(baud)
			if err != nil {
				return fmt.Errorf("BAUD_RATE: %w", err)
			}
			c.BaudRate = b
		}

		if url := os.Getenv("WS_URL"); url != "" {
			c.WebSocketURL = url
		}

		if username := os.Getenv("WS_USERNAME"); username != "" {
			c.WebSocketUsername = username
		}

		if password := os.Getenv("WS_PASSWORD"); password != "" {
			c.WebSocketPassword = password
		}

		if ssid := os.Getenv("WIFI_SSID"); ssid != "" {
			c.SSID = ssid
		}

		if password := os.Getenv("WIFI_PASSWORD"); password != "" {
			c.Password = password
		}

		if host := os.Getenv("OSC_HOST"); host != "" {
			c.OSCHost = host
		}

		if port := os.Getenv("OSC_PORT"); port != "" {
			p, err := strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("OSC_PORT: %w", err)
			}
			c.OSCPort = p
		}

		if protocol := os.Getenv("OSC_PROTOCOL"); protocol != "" {
			c.Protocol = protocol
		}

		if retries := os.Getenv("MAX_RETRIES"); retries != "" {
			r, err := strconv.Atoi(retries)
			if err != nil {
				return fmt.Errorf("MAX_RETRIES: %w", err)
			}
			c.MaxRetries = r
		}

		if timeout := os.Getenv("AT_TIMEOUT"); timeout != "" {
			d, err := time.ParseDuration(timeout)
			if err != nil {
				return fmt.Errorf("AT_TIMEOUT: %w", err)
			}
			c.ATTimeout = d
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags. Only flags set
// explicitly override earlier sources.
func WithFlags(fSet *pflag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var errs []error
		fSet.Visit(func(f *pflag.Flag) {
			var err error
			value := f.Value.String()
			switch f.Name {
			case "bind":
				c.BindAddress = value
			case "port":
				c.SerialPort = value
			case "baud":
				c.BaudRate, err = strconv.Atoi(value)
			case "url":
				c.WebSocketURL = value
			case "username":
				c.WebSocketUsername = value
			case "ssid":
				c.SSID = value
			case "host":
				c.OSCHost = value
			case "osc-port":
				c.OSCPort, err = strconv.Atoi(value)
			case "protocol":
				c.Protocol = value
			case "retries":
				c.MaxRetries, err = strconv.Atoi(value)
			case "timeout":
				c.ATTimeout, err = time.ParseDuration(value)
			case "log-level":
				c.LogLevel = value
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("--%s: %w", f.Name, err))
			}
		})
		return errors.Join(errs...)
	}
}

// Validate checks that the configuration is complete enough to connect.
func (c *Config) Validate() error {
	var errs []error
	if c.WebSocketURL == "" && c.SerialPort == "" {
		errs = append(errs, errors.New("either a serial port or a WebSocket URL is required"))
	}
	if c.SSID == "" {
		errs = append(errs, errors.New("WiFi SSID is required"))
	}
	if c.OSCHost == "" {
		errs = append(errs, errors.New("OSC host is required"))
	}
	if c.OSCPort < 1 || c.OSCPort > 65535 {
		errs = append(errs, fmt.Errorf("OSC port %d out of range", c.OSCPort))
	}
	if _, err := modem.ParseProtocol(c.Protocol); err != nil {
		errs = append(errs, err)
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries))
	}
	if c.ATTimeout <= 0 {
		errs = append(errs, fmt.Errorf("AT timeout must be positive, got %s", c.ATTimeout))
	}
	return errors.Join(errs...)
}
