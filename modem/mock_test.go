package modem_test

import (
	"fmt"

	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/oscgw/modem"
)

type MockSequenceBuilder struct {
	transport *modem.MockTransport
	calls     []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

// exchange expects command to be written and answers it with a single read.
func (b *MockSequenceBuilder) exchange(command, resp string) *MockSequenceBuilder {
	line := []byte(command + "\r\n")
	b.calls = append(b.calls,
		b.transport.EXPECT().Write(line).Return(len(line), nil),
		b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			return copy(p, resp), nil
		}),
	)
	return b
}

func (b *MockSequenceBuilder) Restore() *MockSequenceBuilder {
	return b.exchange("AT+RESTORE", "AT+RESTORE\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) Reset() *MockSequenceBuilder {
	return b.exchange("AT+RST", "AT+RST\r\n\r\nOK\r\n ets Jan  8 2013\r\n\r\nready\r\n")
}

func (b *MockSequenceBuilder) StationMode() *MockSequenceBuilder {
	return b.exchange("AT+CWMODE=1", "AT+CWMODE=1\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) JoinAP(ssid, password string) *MockSequenceBuilder {
	return b.exchange(
		fmt.Sprintf("AT+CWJAP=%q,%q", ssid, password),
		"WIFI CONNECTED\r\nWIFI GOT IP\r\n\r\nOK\r\n",
	)
}

func (b *MockSequenceBuilder) JoinAPFail(ssid, password string) *MockSequenceBuilder {
	return b.exchange(
		fmt.Sprintf("AT+CWJAP=%q,%q", ssid, password),
		"+CWJAP:3\r\n\r\nFAIL\r\n",
	)
}

func (b *MockSequenceBuilder) SingleConnection() *MockSequenceBuilder {
	return b.exchange("AT+CIPMUX=0", "AT+CIPMUX=0\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) StartTCP(host string, port int) *MockSequenceBuilder {
	return b.exchange(fmt.Sprintf("AT+CIPSTART=\"TCP\",%q,%d", host, port), "CONNECT\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) StartUDP(host string, port int) *MockSequenceBuilder {
	return b.exchange(fmt.Sprintf("AT+CIPSTART=\"UDP\",%q,%d,%d,0", host, port, port), "CONNECT\r\n\r\nOK\r\n")
}

// Send expects a CIPSEND for payload followed by the payload itself.
func (b *MockSequenceBuilder) Send(payload []byte) *MockSequenceBuilder {
	b.exchange(fmt.Sprintf("AT+CIPSEND=%d", len(payload)), "\r\nOK\r\n> ")
	b.calls = append(b.calls,
		b.transport.EXPECT().Write(payload).Return(len(payload), nil),
	)
	return b
}

// Connected chains everything needed to reach TransportOpen over UDP.
func (b *MockSequenceBuilder) Connected(ssid, password, host string, port int) *MockSequenceBuilder {
	return b.Restore().
		Reset().
		StationMode().
		JoinAP(ssid, password).
		SingleConnection().
		StartUDP(host, port)
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}
