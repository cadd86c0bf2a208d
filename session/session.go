// Package session sequences the milestones of a module connection and sends
// OSC messages over it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"i4.energy/across/oscgw/modem"
	"i4.energy/across/oscgw/osc"
)

//go:generate go tool mockgen -destination=mock_driver.go -package=session . Driver

// Driver is the module connection a Session works with. *modem.Modem
// implements it.
type Driver interface {
	Initialize(ctx context.Context) error
	JoinNetwork(ctx context.Context, ssid, password string) error
	OpenTransport(ctx context.Context, protocol modem.Protocol, host string, port int) error
	SendRaw(ctx context.Context, payload []byte) error

	State() modem.State
	LastStepError() error
	LastSendSuccessful() bool
	Pushes() <-chan modem.Push
}

// Network identifies the access point to join.
type Network struct {
	SSID     string
	Password string
}

// LogValue keeps the password out of logs.
func (n Network) LogValue() slog.Value {
	return slog.GroupValue(slog.String("ssid", n.SSID))
}

// Endpoint is the OSC server messages are sent to.
type Endpoint struct {
	Protocol modem.Protocol
	Host     string
	Port     int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s %s:%d", e.Protocol, e.Host, e.Port)
}

// Status is a snapshot of the connection, for status displays.
type Status struct {
	State              modem.State
	LastStepError      error
	LastSendSuccessful bool
}

// Reply is an OSC message received from the server.
type Reply struct {
	Message osc.Message
	// Raw is the packet as received.
	Raw []byte
}

// Session runs initialize, join and open in order, then sends any number of
// messages over the open transport.
type Session struct {
	driver Driver
	logger *slog.Logger

	// mu serializes Connect and Send so a reconnect never interleaves with
	// a send
	mu sync.Mutex
}

// New creates a Session over d. A nil logger discards all records.
func New(d Driver, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		driver: d,
		logger: logger.With("component", "session"),
	}
}

// Connect brings the module from any state to an open transport. It stops at
// the first failing milestone and returns its error.
func (s *Session) Connect(ctx context.Context, network Network, endpoint Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Initializing module")
	if err := s.driver.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	s.logger.Info("Joining network", "network", network)
	if err := s.driver.JoinNetwork(ctx, network.SSID, network.Password); err != nil {
		return fmt.Errorf("join %q: %w", network.SSID, err)
	}

	s.logger.Info("Opening transport", "endpoint", endpoint.String())
	if err := s.driver.OpenTransport(ctx, endpoint.Protocol, endpoint.Host, endpoint.Port); err != nil {
		return fmt.Errorf("open %s: %w", endpoint, err)
	}

	s.logger.Info("Connected", "endpoint", endpoint.String())
	return nil
}

// Send encodes an OSC message and transmits it. An address that does not
// start with '/' or a string containing NUL is rejected before anything is
// written.
func (s *Session) Send(ctx context.Context, address string, args ...osc.Arg) error {
	if err := (osc.Message{Address: address, Args: args}).Validate(); err != nil {
		return err
	}
	payload := osc.Build(address, args...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.driver.SendRaw(ctx, payload); err != nil {
		return fmt.Errorf("send %s: %w", address, err)
	}
	s.logger.Debug("Message sent", "address", address, "bytes", len(payload))
	return nil
}

// State returns the milestone the module has reached.
func (s *Session) State() modem.State {
	return s.driver.State()
}

// LastStepError returns the error of the most recent module operation.
func (s *Session) LastStepError() error {
	return s.driver.LastStepError()
}

// LastSendSuccessful reports whether the most recent send succeeded.
func (s *Session) LastSendSuccessful() bool {
	return s.driver.LastSendSuccessful()
}

// Status returns a snapshot of the connection.
func (s *Session) Status() Status {
	return Status{
		State:              s.driver.State(),
		LastStepError:      s.driver.LastStepError(),
		LastSendSuccessful: s.driver.LastSendSuccessful(),
	}
}

// Replies decodes the data the server sends back as OSC messages until ctx
// is done. Packets that do not decode are logged and skipped; other module
// notifications are logged only.
//
// The module only delivers data while someone reads it: run modem.Listen
// alongside, or keep the session busy with sends.
func (s *Session) Replies(ctx context.Context) <-chan Reply {
	out := make(chan Reply)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-s.driver.Pushes():
				if !ok {
					return
				}
				if p.Payload == nil {
					s.logger.Info("Module notification", "line", p.Line)
					continue
				}
				msg, err := osc.Parse(p.Payload)
				if err != nil {
					s.logger.Warn("Dropping undecodable reply", "bytes", len(p.Payload), "error", err)
					continue
				}
				select {
				case out <- Reply{Message: msg, Raw: p.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
