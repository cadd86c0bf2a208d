package at

import "bytes"

// DefaultCapacity is the size of the rolling response window.
const DefaultCapacity = 200

// MatchKind is the classification of the bytes observed so far.
type MatchKind int

const (
	Pending MatchKind = iota
	Success
	Failure
)

func (k MatchKind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of feeding bytes to a Matcher.
type Outcome struct {
	Kind MatchKind
	// Token is the literal that decided the outcome.
	Token string
	// Buffer holds the response up to and including Token, bounded by the
	// matcher capacity.
	Buffer []byte
}

// Matcher accumulates streamed module output in a bounded rolling window and
// classifies it against the expected success and failure tokens.
//
// Tokens are matched by case-sensitive substring containment. When several
// tokens are present the one whose first occurrence ends earliest wins, so
// the outcome depends only on the bytes observed and never on how they were
// chunked. A decided token is consumed: later waits only see what follows it.
type Matcher struct {
	buf      []byte
	capacity int
	cursor   int
	success  []string
	failure  []string
}

// NewMatcher returns a Matcher that keeps at most capacity bytes.
func NewMatcher(capacity int) *Matcher {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Matcher{
		buf:      make([]byte, 0, 2*capacity),
		capacity: capacity,
	}
}

// Expect installs the token sets for the next wait. Buffered bytes are kept.
func (m *Matcher) Expect(success, failure []string) {
	m.success = success
	m.failure = failure
}

// Reset discards all buffered bytes.
func (m *Matcher) Reset() {
	m.buf = m.buf[:0]
	m.cursor = 0
}

// Observe appends p and reports whether an expected token is now present.
// p may be empty, in which case the buffered bytes are re-evaluated.
func (m *Matcher) Observe(p []byte) Outcome {
	m.buf = append(m.buf, p...)
	out := m.match()
	m.evict()
	return out
}

// Bytes returns a copy of the current window.
func (m *Matcher) Bytes() []byte {
	return bytes.Clone(m.buf)
}

func (m *Matcher) match() Outcome {
	window := m.buf[m.cursor:]

	kind, token, end := Pending, "", -1
	scan := func(tokens []string, k MatchKind) {
		for _, tok := range tokens {
			if tok == "" {
				continue
			}
			i := bytes.Index(window, []byte(tok))
			if i < 0 {
				continue
			}
			if e := i + len(tok); end < 0 || e < end {
				kind, token, end = k, tok, e
			}
		}
	}
	// Success first: ties go to success tokens.
	scan(m.success, Success)
	scan(m.failure, Failure)

	if kind == Pending {
		return Outcome{Kind: Pending}
	}

	m.cursor += end
	resp := m.buf[:m.cursor]
	if len(resp) > m.capacity {
		resp = resp[len(resp)-m.capacity:]
	}
	return Outcome{Kind: kind, Token: token, Buffer: bytes.Clone(resp)}
}

// evict drops the oldest bytes beyond capacity.
func (m *Matcher) evict() {
	drop := len(m.buf) - m.capacity
	if drop <= 0 {
		return
	}
	m.buf = append(m.buf[:0], m.buf[drop:]...)
	m.cursor -= drop
	if m.cursor < 0 {
		m.cursor = 0
	}
}
