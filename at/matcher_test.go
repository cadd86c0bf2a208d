package at_test

import (
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"i4.energy/across/oscgw/at"
)

var (
	okTokens   = []string{at.OK}
	failTokens = []string{at.ERROR, at.FAIL}
)

func TestMatcherObserve(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		kind   at.MatchKind
		token  string
	}{
		{name: "Nothing received", chunks: []string{"", ""}, kind: at.Pending},
		{name: "Token split across reads", chunks: []string{"AT\r\n\r\nO", "", "K\r\n"}, kind: at.Success, token: at.OK},
		{name: "Error token", chunks: []string{"AT+CWMODE=9\r\n", "ERROR\r\n"}, kind: at.Failure, token: at.ERROR},
		{name: "Earliest token wins", chunks: []string{"FAIL\r\n\r\nOK\r\n"}, kind: at.Failure, token: at.FAIL},
		{name: "Case sensitive", chunks: []string{"ok\r\n"}, kind: at.Pending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := at.NewMatcher(at.DefaultCapacity)
			m.Expect(okTokens, failTokens)

			var out at.Outcome
			for _, chunk := range tt.chunks {
				out = m.Observe([]byte(chunk))
				if out.Kind != at.Pending {
					break
				}
			}
			if out.Kind != tt.kind {
				t.Fatalf("expected %v, got %v", tt.kind, out.Kind)
			}
			if out.Token != tt.token {
				t.Errorf("expected token %q, got %q", tt.token, out.Token)
			}
		})
	}
}

func TestMatcherSequentialWaits(t *testing.T) {
	m := at.NewMatcher(at.DefaultCapacity)

	m.Expect([]string{at.WifiConnected}, failTokens)
	out := m.Observe([]byte("AT+CWJAP=\"lab\",\"pw\"\r\nWIFI CONNECTED\r\nWIFI GOT IP\r\n\r\nOK\r\n"))
	if out.Kind != at.Success || out.Token != at.WifiConnected {
		t.Fatalf("expected WIFI CONNECTED, got %v %q", out.Kind, out.Token)
	}

	// Later waits reuse the bytes that arrived with the first token.
	m.Expect([]string{at.WifiGotIP}, failTokens)
	if out := m.Observe(nil); out.Kind != at.Success {
		t.Fatalf("expected WIFI GOT IP from buffered bytes, got %v", out.Kind)
	}

	m.Expect(okTokens, failTokens)
	out = m.Observe(nil)
	if out.Kind != at.Success {
		t.Fatalf("expected OK from buffered bytes, got %v", out.Kind)
	}
	if !strings.HasSuffix(string(out.Buffer), "OK") {
		t.Errorf("expected buffer to end with the token, got %q", out.Buffer)
	}

	// A consumed token is not matched twice.
	m.Expect(okTokens, failTokens)
	if out := m.Observe(nil); out.Kind != at.Pending {
		t.Errorf("expected consumed OK to stay consumed, got %v", out.Kind)
	}
}

func TestMatcherEviction(t *testing.T) {
	m := at.NewMatcher(8)
	m.Expect(okTokens, failTokens)

	if out := m.Observe([]byte(strings.Repeat("x", 32))); out.Kind != at.Pending {
		t.Fatalf("expected pending, got %v", out.Kind)
	}
	if got := len(m.Bytes()); got != 8 {
		t.Fatalf("expected window of 8 bytes, got %d", got)
	}

	out := m.Observe([]byte("O"))
	if out.Kind != at.Pending {
		t.Fatalf("expected pending, got %v", out.Kind)
	}
	out = m.Observe([]byte("K"))
	if out.Kind != at.Success {
		t.Fatalf("expected token split across an eviction to match, got %v", out.Kind)
	}
	if len(out.Buffer) > 8 {
		t.Errorf("expected outcome buffer bounded by capacity, got %d bytes", len(out.Buffer))
	}
}

func TestMatcherReset(t *testing.T) {
	m := at.NewMatcher(at.DefaultCapacity)
	m.Expect(okTokens, failTokens)
	m.Observe([]byte("O"))
	m.Reset()
	if out := m.Observe([]byte("K")); out.Kind != at.Pending {
		t.Errorf("expected reset to drop the partial token, got %v", out.Kind)
	}
}

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// newFuzzRng creates a random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := time.Now().UnixNano()
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if s, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			seed = s
		}
	}
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func TestFuzzMatcherChunking(t *testing.T) {
	rng := newFuzzRng(t)
	pieces := []string{"O", "K", "OK", "ER", "ROR", "FA", "IL", "WIFI ", "GOT IP", "\r\n", "x", "busy p..."}
	// filler never contains a token, so it pushes the decision past eviction
	filler := []string{"x", "\r\n", "busy p...", "WIFI "}

	decide := func(capacity int, stream string, chunks []int) (at.MatchKind, string) {
		m := at.NewMatcher(capacity)
		m.Expect([]string{at.OK, at.WifiGotIP}, failTokens)
		pos := 0
		for _, n := range chunks {
			out := m.Observe([]byte(stream[pos : pos+n]))
			pos += n
			if out.Kind != at.Pending {
				return out.Kind, out.Token
			}
		}
		return at.Pending, ""
	}

	for round := 0; round < getFuzzRounds(); round++ {
		var sb strings.Builder
		for noise := rng.Intn(2 * at.DefaultCapacity); sb.Len() < noise; {
			sb.WriteString(filler[rng.Intn(len(filler))])
		}
		for end := sb.Len() + 120; sb.Len() < end; {
			sb.WriteString(pieces[rng.Intn(len(pieces))])
		}
		stream := sb.String()

		var chunks []int
		for rest := len(stream); rest > 0; {
			n := 1 + rng.Intn(16)
			if n > rest {
				n = rest
			}
			chunks = append(chunks, n)
			rest -= n
		}

		// A single observation decides before anything is evicted.
		wantKind, wantToken := decide(at.DefaultCapacity, stream, []int{len(stream)})
		for _, capacity := range []int{16, at.DefaultCapacity} {
			gotKind, gotToken := decide(capacity, stream, chunks)
			if gotKind != wantKind || gotToken != wantToken {
				t.Fatalf("round %d: stream %q chunked %v with capacity %d gave %v %q, whole gave %v %q",
					round, stream, chunks, capacity, gotKind, gotToken, wantKind, wantToken)
			}
		}
	}
}
