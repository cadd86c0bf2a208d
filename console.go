package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"i4.energy/across/oscgw/osc"
	"i4.energy/across/oscgw/session"
)

const (
	historyFileName = ".oscgw_history"
	historySize     = 500
	consolePrompt   = "osc> "
)

// LineEditor reads console input with readline on a terminal and falls back
// to a plain scanner when input is piped.
type LineEditor struct {
	rl          *readline.Instance
	scanner     *bufio.Scanner
	interactive bool
}

// NewLineEditor picks the input mode from the kind of standard input.
func NewLineEditor() *LineEditor {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return &LineEditor{scanner: bufio.NewScanner(os.Stdin)}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            filepath.Join(home, historyFileName),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return &LineEditor{scanner: bufio.NewScanner(os.Stdin)}
	}
	return &LineEditor{rl: rl, interactive: true}
}

// GetLine returns the next line, or io.EOF when input ends or the user
// interrupts.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if !le.interactive {
		if !le.scanner.Scan() {
			if err := le.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return le.scanner.Text(), nil
	}

	le.rl.SetPrompt(prompt)
	line, err := le.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

func runConsole(cmd *cobra.Command, _ []string) error {
	g, err := connect(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	go func() {
		if err := g.modem.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Warn("Push listener stopped", "error", err)
		}
	}()
	go func() {
		for r := range g.session.Replies(ctx) {
			fmt.Fprintf(out, "< %s\n", r.Message)
		}
	}()

	editor := NewLineEditor()
	defer editor.Close()

	for {
		line, err := editor.GetLine(consolePrompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := consoleLine(ctx, out, g.session, g.network, g.endpoint, line); quit {
			return nil
		}
	}
}

// consoleLine executes one console line and reports whether the console
// should exit.
func consoleLine(ctx context.Context, out io.Writer, s *session.Session, network session.Network, endpoint session.Endpoint, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "status":
		status := s.Status()
		fmt.Fprintf(out, "state: %s, last send ok: %t\n", status.State, status.LastSendSuccessful)
		if status.LastStepError != nil {
			fmt.Fprintf(out, "last error: %v\n", status.LastStepError)
		}
	case "reconnect":
		if err := s.Connect(ctx, network, endpoint); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "connected to %s\n", endpoint)
	default:
		args, err := osc.ParseArgs(fields[1:])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		if err := s.Send(ctx, fields[0], args...); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "> %s\n", osc.Message{Address: fields[0], Args: args})
	}
	return false
}
