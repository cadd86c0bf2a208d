package modem

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Exchange is one scripted interaction of a TestTransport: when a write
// starting with Command arrives, every element of Reply becomes the result
// of one subsequent Read.
type Exchange struct {
	Command string
	Reply   []string
}

// TestTransport is a test helper that simulates the module by answering
// scripted commands. Reads never block: they return the next queued chunk,
// or nothing, like a serial port with a short read timeout.
type TestTransport struct {
	mu      sync.Mutex
	script  []Exchange
	chunks  [][]byte
	written [][]byte
	closed  bool
}

// NewTestTransport creates a transport that follows script in order.
func NewTestTransport(script ...Exchange) *TestTransport {
	return &TestTransport{script: script}
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	t.written = append(t.written, bytes.Clone(p))

	if len(t.script) > 0 && bytes.HasPrefix(p, []byte(t.script[0].Command)) {
		for _, r := range t.script[0].Reply {
			t.chunks = append(t.chunks, []byte(r))
		}
		t.script = t.script[1:]
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.EOF
	}
	if len(t.chunks) == 0 {
		return 0, nil
	}
	n = copy(p, t.chunks[0])
	if n < len(t.chunks[0]) {
		t.chunks[0] = t.chunks[0][n:]
	} else {
		t.chunks = t.chunks[1:]
	}
	return n, nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// SendData queues data to be read by the transport.
// This simulates unsolicited output from the module.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chunks = append(t.chunks, []byte(data))
}

// Written returns every write received so far.
func (t *TestTransport) Written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.written))
	for i, w := range t.written {
		out[i] = string(w)
	}
	return out
}

// Pending returns the number of scripted exchanges not yet triggered.
func (t *TestTransport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.script)
}

// Dial lets a TestTransport act as its own Dialer.
func (t *TestTransport) Dial(context.Context) (Transport, error) {
	return t, nil
}

// ManualClock is a Clock for tests that only advances when Sleep is called.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
