package modem

import (
	"context"
	"fmt"

	"i4.energy/across/oscgw/at"
)

// MaxPayload is the largest payload the module accepts in one send.
const MaxPayload = 2048

// SendRaw transmits payload over the open transport.
//
// The module is told the payload length, and once it has acknowledged the
// command and shown its ">" prompt the payload is written verbatim, without
// a terminator. SendRaw does not wait for the module to report the delivery.
//
// A failed send leaves the transport open: sending again does not require
// opening it again.
func (m *Modem) SendRaw(ctx context.Context, payload []byte) error {
	const op = "send"
	if len(payload) == 0 || len(payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes (1-%d)", ErrPayloadSize, len(payload), MaxPayload)
	}

	m.statusMu.Lock()
	m.lastSendOK = false
	m.statusMu.Unlock()

	if err := m.begin(op, StateTransportOpen); err != nil {
		return err
	}
	defer m.claim.Unlock()

	err := m.run(ctx, op, []step{
		{command: at.Send(len(payload)), expect: []string{at.OK, at.Prompt}, payload: payload},
	})
	m.finish(err, StateTransportOpen)

	m.statusMu.Lock()
	m.lastSendOK = err == nil
	m.statusMu.Unlock()
	return err
}
