package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"i4.energy/across/oscgw/modem"
	"i4.energy/across/oscgw/osc"
)

var rootCmd = &cobra.Command{
	Use:   "oscgw",
	Short: "OSC gateway over an ESP8266 WiFi module",
	Long: `oscgw - Sends Open Sound Control messages through an ESP8266 WiFi module.

The module is driven with AT commands, over a local serial port or a
serial-to-WebSocket bridge. It is restored, joined to the WiFi network and
connected to the OSC server (e.g. Sonic Pi on port 4560) before messages
are sent.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Passwords are read from WIFI_PASSWORD and WS_PASSWORD, the config file, or
prompted interactively. There are no password flags, to keep credentials
out of shell history.

Message arguments use a type prefix (i:42, f:440, s:text) or are inferred:
integer, then float, then string.`,
	Version:      "1.0.0",
	SilenceUsage: true,
}

var sendCmd = &cobra.Command{
	Use:   "send <address> [args...]",
	Short: "Connect and send a single message",
	Example: `  oscgw send /trigger/prophet 70 f:0.5 --ssid studio --host 192.168.1.20
  oscgw send /run-code "s:play 60" --osc-port 4557 --protocol tcp`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Connect and send messages typed line by line",
	Long: `Connects, then reads lines of the form "<address> [args...]" from the
terminal or standard input and sends each as a message.

Commands:
  status      show the connection state
  reconnect   run the connection sequence again
  quit        leave the console`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect and accept messages over HTTP",
	Long: `Connects, then serves:

  POST /osc        {"address": "/trigger", "args": ["f:440", 1, "s:saw"]}
  GET  /status     connection state and outcome of the last send
  POST /reconnect  run the connection sequence again`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringP("port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntP("baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringP("url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().String("username", "", "Username for HTTP Basic auth")

	// Session flags
	rootCmd.PersistentFlags().String("ssid", "", "WiFi network to join")
	rootCmd.PersistentFlags().String("host", "", "OSC server address")
	rootCmd.PersistentFlags().Int("osc-port", 4560, "OSC server port")
	rootCmd.PersistentFlags().String("protocol", "udp", "Transport to the OSC server (udp, tcp)")
	rootCmd.PersistentFlags().Int("retries", modem.DefaultMaxRetries, "Attempts per module operation")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Time budget of one attempt (default 10s)")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")

	serveCmd.Flags().String("bind", "0.0.0.0:8080", "Bind address for the HTTP server")

	rootCmd.AddCommand(sendCmd, consoleCmd, serveCmd)
}

// Execute runs the root command. ctx is cancelled on shutdown signals.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runSend(cmd *cobra.Command, args []string) error {
	oscArgs, err := osc.ParseArgs(args[1:])
	if err != nil {
		return err
	}

	g, err := connect(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	if err := g.session.Send(cmd.Context(), args[0], oscArgs...); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), osc.Message{Address: args[0], Args: oscArgs})
	return nil
}
