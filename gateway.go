package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
	"golang.org/x/term"

	"i4.energy/across/oscgw/modem"
	"i4.energy/across/oscgw/session"
)

// gateway is a connected module and the session running over it.
type gateway struct {
	config   *Config
	logger   *slog.Logger
	modem    *modem.Modem
	session  *session.Session
	network  session.Network
	endpoint session.Endpoint
}

// connect loads the configuration, opens the module and runs the connection
// sequence.
func connect(cmd *cobra.Command) (*gateway, error) {
	g, err := open(cmd)
	if err != nil {
		return nil, err
	}
	if err := g.session.Connect(cmd.Context(), g.network, g.endpoint); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// open loads the configuration and opens the module without touching it.
func open(cmd *cobra.Command) (*gateway, error) {
	path, _ := cmd.Flags().GetString("config")
	config, err := LoadConfig(WithDefaults(), WithFile(path), WithEnv(), WithFlags(cmd.Flags()))
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(config.LogLevel)

	if config.Password == "" && isInteractive() {
		if config.Password, err = readPassword(fmt.Sprintf("WiFi password for %s: ", config.SSID)); err != nil {
			return nil, err
		}
	}
	if config.WebSocketURL != "" && config.WebSocketUsername != "" && config.WebSocketPassword == "" {
		if config.WebSocketPassword, err = readPassword("Bridge password: "); err != nil {
			return nil, err
		}
	}

	protocol, err := modem.ParseProtocol(config.Protocol)
	if err != nil {
		return nil, err
	}

	modemConfig, err := modem.NewConfigBuilder().
		WithDialer(config.Dialer()).
		WithLogger(logger.With("component", "modem")).
		WithMaxRetries(config.MaxRetries).
		WithATTimeout(config.ATTimeout).
		Build()
	if err != nil {
		return nil, fmt.Errorf("create modem config: %w", err)
	}

	m, err := modem.New(cmd.Context(), modemConfig)
	if err != nil {
		return nil, fmt.Errorf("open module: %w", err)
	}

	return &gateway{
		config:   config,
		logger:   logger,
		modem:    m,
		session:  session.New(m, logger),
		network:  session.Network{SSID: config.SSID, Password: config.Password},
		endpoint: session.Endpoint{Protocol: protocol, Host: config.OSCHost, Port: config.OSCPort},
	}, nil
}

func (g *gateway) Close() {
	if err := g.modem.Close(); err != nil && !errors.Is(err, modem.ErrAlreadyClosed) {
		g.logger.Error("Failed to close module connection", "error", err)
	}
}

// Dialer returns the transport selected by the configuration: the
// WebSocket bridge when a URL is set, the serial port otherwise.
func (c *Config) Dialer() modem.Dialer {
	if c.WebSocketURL != "" {
		return modem.WebSocketDialer{
			URL:      c.WebSocketURL,
			Username: c.WebSocketUsername,
			Password: c.WebSocketPassword,
		}
	}
	return modem.SerialDialer{
		PortName: c.SerialPort,
		Mode: &serial.Mode{
			BaudRate: c.BaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassword prompts on stderr and reads a line without echo.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(password), nil
	}
	return string(passwordBytes), nil
}
