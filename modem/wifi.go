package modem

import (
	"context"
	"fmt"
	"strings"

	"i4.energy/across/oscgw/at"
)

// Protocol is the transport opened by OpenTransport.
type Protocol string

const (
	TCP Protocol = "TCP"
	UDP Protocol = "UDP"
)

// ParseProtocol accepts "tcp" or "udp" in any case.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToUpper(strings.TrimSpace(s))); p {
	case TCP, UDP:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown protocol %q", ErrInvalidEndpoint, s)
	}
}

// Initialize restores the module to factory settings and resets it. On
// success the module is ready. Any previous milestone is forgotten first,
// so a failed Initialize leaves the Modem uninitialized.
func (m *Modem) Initialize(ctx context.Context) error {
	const op = "initialize"
	if err := m.begin(op, StateUninitialized); err != nil {
		return err
	}
	defer m.claim.Unlock()

	m.setState(StateUninitialized)
	err := m.run(ctx, op, []step{
		{command: at.CmdRestore, expect: []string{at.OK}},
		{command: at.CmdReset, expect: []string{at.Ready}},
	})
	m.finish(err, StateModuleReady)
	return err
}

// JoinNetwork puts the module in station mode and joins the access point
// ssid. It requires a ready module; the transport, if open, is considered
// lost as soon as the join starts.
func (m *Modem) JoinNetwork(ctx context.Context, ssid, password string) error {
	const op = "join network"
	if err := m.begin(op, StateModuleReady); err != nil {
		return err
	}
	defer m.claim.Unlock()

	m.setState(StateModuleReady)
	err := m.run(ctx, op, []step{
		{command: at.CmdStationMode, expect: []string{at.OK}},
		{
			command:  at.JoinAP(ssid, password),
			redacted: at.JoinAP(ssid, "***"),
			expect:   []string{at.WifiConnected, at.WifiGotIP, at.OK},
		},
	})
	m.finish(err, StateNetworkJoined)
	return err
}

// OpenTransport opens a single TCP or UDP connection to host:port. For UDP
// the local port equals the remote one so replies from the server are
// accepted. It requires a joined network.
func (m *Modem) OpenTransport(ctx context.Context, protocol Protocol, host string, port int) error {
	const op = "open transport"

	var start string
	switch protocol {
	case TCP:
		start = at.StartTCP(host, port)
	case UDP:
		start = at.StartUDP(host, port, port)
	default:
		return fmt.Errorf("%w: unknown protocol %q", ErrInvalidEndpoint, protocol)
	}
	if host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidEndpoint)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidEndpoint, port)
	}

	if err := m.begin(op, StateNetworkJoined); err != nil {
		return err
	}
	defer m.claim.Unlock()

	m.setState(StateNetworkJoined)
	err := m.run(ctx, op, []step{
		{command: at.CmdSingleConnection, expect: []string{at.OK}},
		{command: start, expect: []string{at.Connect, at.OK}},
	})
	m.finish(err, StateTransportOpen)
	return err
}
