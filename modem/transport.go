package modem

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
)

//go:generate go tool mockgen -destination=mock_modem.go -package=modem . Transport,Dialer,Clock

// Transport represents an established, bidirectional byte stream to the WiFi
// module.
//
// Read must not block for long: it returns whatever bytes are available and
// may return 0, nil when there are none. The Modem polls it and applies its
// own timeouts. Typical implementations include serial ports opened with a
// short read timeout, serial bridges reached over WebSocket, or in-memory
// fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to the module.
//
// Dialer abstracts how the connection is created and is intended to be used
// during Modem construction only. Once a Transport is obtained, the Dialer is
// no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// DefaultReadTimeout bounds how long a single Read waits for bytes.
const DefaultReadTimeout = 10 * time.Millisecond

// SerialDialer opens the module over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0". Required.
	PortName string
	// Mode defaults to 115200 baud, 8N1.
	Mode *serial.Mode
	// ReadTimeout defaults to DefaultReadTimeout.
	ReadTimeout time.Duration
}

// Dial opens the serial port.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("modem: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("modem: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 115200,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}

	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", d.PortName, err)
	}

	return port, nil
}

// WebSocketDialer reaches the module through a serial-to-WebSocket bridge.
// Module bytes travel in binary messages.
type WebSocketDialer struct {
	// URL is the bridge endpoint, ws:// or wss://. Required.
	URL string
	// Username and Password enable HTTP Basic auth when Username is set.
	Username string
	Password string
	// SkipTLSVerify disables certificate verification for wss://.
	SkipTLSVerify bool
	// HandshakeTimeout defaults to 10s.
	HandshakeTimeout time.Duration
	// ReadTimeout defaults to DefaultReadTimeout.
	ReadTimeout time.Duration
}

// Dial connects to the bridge.
func (d WebSocketDialer) Dial(ctx context.Context) (Transport, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %q (use ws:// or wss://)", u.Scheme)
	}

	handshake := d.HandshakeTimeout
	if handshake <= 0 {
		handshake = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshake}
	if u.Scheme == "wss" && d.SkipTLSVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	header := http.Header{}
	if d.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(d.Username + ":" + d.Password))
		header.Set("Authorization", "Basic "+auth)
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial %s: %w (HTTP %d)", u.Redacted(), err, resp.StatusCode)
		}
		return nil, fmt.Errorf("websocket dial %s: %w", u.Redacted(), err)
	}

	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return newWebSocketTransport(conn, timeout), nil
}

// webSocketTransport adapts a WebSocket connection to the polling Transport
// contract. A pump goroutine owns ReadMessage, because a timed out read
// leaves a gorilla connection unusable.
type webSocketTransport struct {
	conn        *websocket.Conn
	frames      chan []byte
	done        chan struct{}
	readTimeout time.Duration

	buf     []byte
	readErr error

	closeOnce sync.Once
}

func newWebSocketTransport(conn *websocket.Conn, readTimeout time.Duration) *webSocketTransport {
	w := &webSocketTransport{
		conn:        conn,
		frames:      make(chan []byte, 16),
		done:        make(chan struct{}),
		readTimeout: readTimeout,
	}
	go w.pump()
	return w
}

func (w *webSocketTransport) pump() {
	defer close(w.frames)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			// Published to Read by the close of frames.
			w.readErr = err
			return
		}
		if messageType != websocket.BinaryMessage && messageType != websocket.TextMessage {
			continue
		}
		select {
		case w.frames <- data:
		case <-w.done:
			return
		}
	}
}

func (w *webSocketTransport) Read(p []byte) (int, error) {
	if len(w.buf) > 0 {
		n := copy(p, w.buf)
		w.buf = w.buf[n:]
		return n, nil
	}

	timer := time.NewTimer(w.readTimeout)
	defer timer.Stop()

	select {
	case data, ok := <-w.frames:
		if !ok {
			if w.readErr != nil {
				return 0, w.readErr
			}
			return 0, io.EOF
		}
		n := copy(p, data)
		w.buf = data[n:]
		return n, nil
	case <-timer.C:
		return 0, nil
	}
}

func (w *webSocketTransport) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *webSocketTransport) Close() error {
	err := ErrAlreadyClosed
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.conn.Close()
	})
	return err
}
