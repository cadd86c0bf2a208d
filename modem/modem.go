package modem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/oscgw/at"
)

// readChunk is the size of a single transport read.
const readChunk = 256

// pushBuffer is the capacity of the push notification channel.
const pushBuffer = 100

// failTokens end any wait with a rejection.
var failTokens = []string{at.ERROR, at.FAIL}

// Modem drives an ESP8266 WiFi module through its AT command set.
//
// Every operation is synchronous: it writes commands to the transport and
// polls it until the expected tokens arrive, a failure token is seen or the
// attempt runs out of time. The Modem is the only reader of its transport;
// operations and the optional Listen loop take turns through a single claim.
type Modem struct {
	// transport provides the physical connection to the module
	transport Transport
	// config contains the modem configuration settings
	config Config
	logger *slog.Logger
	clock  Clock

	// claim is held by whoever reads the transport: an operation for its
	// whole duration, the listener for a single read
	claim sync.Mutex
	// matcher holds the rolling response window of the current step
	matcher *at.Matcher
	// demux forwards unsolicited notifications to Pushes and keeps inbound
	// frames away from the matcher
	demux *demux
	// listening indicates if Listen is currently running
	listening atomic.Bool

	// status is guarded by statusMu so it can be read during an operation
	statusMu     sync.RWMutex
	state        State
	lastErr      error
	lastSendOK   bool
	lastResponse []byte
	attempts     int
	closed       bool
}

// step is one AT command and the tokens it must produce, in order, against
// a single accumulating response buffer.
type step struct {
	command string
	// redacted replaces command in logs and errors when it carries secrets
	redacted string
	expect   []string
	// payload is written verbatim once every token has been seen
	payload []byte
}

func (s step) String() string {
	if s.redacted != "" {
		return s.redacted
	}
	return s.command
}

// New creates a new Modem with the given configuration and dials its
// transport. The module itself is left untouched; call Initialize next.
func New(ctx context.Context, config Config) (*Modem, error) {
	if config.dialer == nil {
		return nil, ErrNoDialer
	}
	config.setDefaults()

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial module: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	return &Modem{
		transport: transport,
		config:    config,
		logger:    config.logger,
		clock:     config.clock,
		matcher:   at.NewMatcher(config.rxBufferSize),
		demux:     newDemux(pushBuffer, config.logger),
	}, nil
}

// Close releases the transport. After calling Close the Modem cannot be
// reused; a second call returns ErrAlreadyClosed.
func (m *Modem) Close() error {
	m.statusMu.Lock()
	if m.closed {
		m.statusMu.Unlock()
		return ErrAlreadyClosed
	}
	m.closed = true
	m.state = StateUninitialized
	m.statusMu.Unlock()

	return m.transport.Close()
}

// State returns the milestone the module has reached.
func (m *Modem) State() State {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.state
}

// LastStepError returns the error of the most recent operation, nil if it
// succeeded.
func (m *Modem) LastStepError() error {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.lastErr
}

// LastSendSuccessful reports whether the most recent SendRaw succeeded.
func (m *Modem) LastSendSuccessful() bool {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.lastSendOK
}

// LastResponse returns the module output observed by the most recent wait.
func (m *Modem) LastResponse() string {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return string(m.lastResponse)
}

// Attempts returns how many attempts the most recent operation used.
func (m *Modem) Attempts() int {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.attempts
}

// Pushes returns a read-only channel of unsolicited notifications. The
// channel is buffered, but drops notifications if not consumed fast enough.
func (m *Modem) Pushes() <-chan Push {
	return m.demux.out
}

// Listen polls the transport for unsolicited notifications between
// operations until ctx is cancelled or the transport fails. It must not be
// called more than once at a time.
//
// Usage:
//
//	go m.Listen(ctx)
//	for p := range m.Pushes() { ... }
func (m *Modem) Listen(ctx context.Context) error {
	if !m.listening.CompareAndSwap(false, true) {
		return ErrListenerRunning
	}
	defer m.listening.Store(false)

	buf := make([]byte, readChunk)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.isClosed() {
			return ErrAlreadyClosed
		}

		m.claim.Lock()
		n, err := m.transport.Read(buf)
		if n > 0 {
			m.demux.feed(buf[:n])
		}
		m.claim.Unlock()

		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			m.clock.Sleep(m.config.pollInterval)
		}
	}
}

func (m *Modem) isClosed() bool {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.closed
}

// begin claims the transport for an operation and checks that the module
// has reached required. On success the caller must release the claim.
func (m *Modem) begin(op string, required State) error {
	if m.transport == nil {
		return ErrNotInitialized
	}
	m.claim.Lock()

	m.statusMu.Lock()
	defer m.statusMu.Unlock()

	if m.closed {
		m.claim.Unlock()
		return ErrAlreadyClosed
	}
	if m.state < required {
		err := &StepError{Kind: PreconditionNotMet, Op: op, Required: required, Actual: m.state}
		m.lastErr = err
		m.claim.Unlock()
		return err
	}
	return nil
}

// setState records s, lowering or raising the milestone.
func (m *Modem) setState(s State) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.state = s
}

// finish records the outcome of an operation. On success the module is
// moved to reached.
func (m *Modem) finish(err error, reached State) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.lastErr = err
	if err == nil {
		m.state = reached
	}
}

// run executes steps as one unit, retrying the whole unit from its first
// command up to the configured number of attempts. Only Timeout and Rejected
// failures are retried.
func (m *Modem) run(ctx context.Context, op string, steps []step) error {
	var err error
	for attempt := 1; attempt <= m.config.maxRetries; attempt++ {
		m.statusMu.Lock()
		m.attempts = attempt
		m.statusMu.Unlock()

		err = m.attempt(ctx, op, steps)
		if err == nil {
			m.logger.Debug("AT operation succeeded", "op", op, "attempt", attempt)
			return nil
		}

		var stepErr *StepError
		if !errors.As(err, &stepErr) {
			return err
		}
		m.logger.Warn("AT operation failed", "op", op, "attempt", attempt, "max_retries", m.config.maxRetries, "error", err)
	}
	return err
}

// attempt runs every step under one deadline, so an attempt never takes
// longer than the configured AT timeout.
func (m *Modem) attempt(ctx context.Context, op string, steps []step) error {
	deadline := m.clock.Now().Add(m.config.atTimeout)
	for _, s := range steps {
		if err := m.exec(ctx, op, s, deadline); err != nil {
			return err
		}
	}
	return nil
}

// exec writes one command and awaits its tokens in order. Each step starts
// with an empty response buffer; the waits within it share the buffer.
func (m *Modem) exec(ctx context.Context, op string, s step, deadline time.Time) error {
	m.matcher.Reset()

	m.logger.Debug("AT command", "op", op, "command", s.String())
	if _, err := m.transport.Write([]byte(s.command + at.CRLF)); err != nil {
		return fmt.Errorf("write command %q: %w", s.String(), err)
	}

	for _, token := range s.expect {
		m.matcher.Expect([]string{token}, failTokens)

		out, err := m.await(ctx, deadline)
		if err != nil {
			return fmt.Errorf("%s: await %q: %w", op, token, err)
		}

		switch out.Kind {
		case at.Pending:
			return &StepError{Kind: Timeout, Op: op, Command: s.String(), Token: token, Response: m.LastResponse()}
		case at.Failure:
			return &StepError{Kind: Rejected, Op: op, Command: s.String(), Token: out.Token, Response: string(out.Buffer)}
		}
		m.logger.Debug("AT token", "op", op, "token", out.Token)
	}

	if s.payload != nil {
		if _, err := m.transport.Write(s.payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}
	return nil
}

// await polls the transport until the matcher decides or the deadline
// passes. A Pending outcome with a nil error means the deadline passed.
func (m *Modem) await(ctx context.Context, deadline time.Time) (at.Outcome, error) {
	out := m.matcher.Observe(nil)
	buf := make([]byte, readChunk)

	for out.Kind == at.Pending {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !m.clock.Now().Before(deadline) {
			m.recordResponse(m.matcher.Bytes())
			return out, nil
		}

		n, err := m.transport.Read(buf)
		if n > 0 {
			out = m.matcher.Observe(m.demux.feed(buf[:n]))
			continue
		}
		if err != nil {
			return out, fmt.Errorf("read error: %w", err)
		}
		m.clock.Sleep(m.config.pollInterval)
	}

	m.recordResponse(out.Buffer)
	return out, nil
}

func (m *Modem) recordResponse(b []byte) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.lastResponse = b
}
