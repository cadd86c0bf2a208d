package at_test

import (
	"bufio"
	"strings"
	"testing"

	"i4.energy/across/oscgw/at"
)

func TestSplitter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Simple AT command response",
			input:    "AT+CIPMUX=0\r\n\r\nOK\r\n",
			expected: []string{"AT+CIPMUX=0", "", "OK"},
		},
		{
			name:     "AT command with error",
			input:    "AT+CWJAP=\"lab\",\"x\"\r\n+CWJAP:3\r\n\r\nFAIL\r\n",
			expected: []string{"AT+CWJAP=\"lab\",\"x\"", "+CWJAP:3", "", "FAIL"},
		},
		{
			name:     "Join access point",
			input:    "WIFI CONNECTED\r\nWIFI GOT IP\r\n\r\nOK\r\n",
			expected: []string{"WIFI CONNECTED", "WIFI GOT IP", "", "OK"},
		},
		{
			name:     "Send sequence with prompt",
			input:    "AT+CIPSEND=32\r\n\r\nOK\r\n>",
			expected: []string{"AT+CIPSEND=32", "", "OK", ">"},
		},
		{
			name:     "Prompt followed by a space",
			input:    "> ",
			expected: []string{">", " "},
		},
		{
			name:     "Inbound frame carrying CRLF",
			input:    "\r\n+IPD,6:ab\r\ncd\r\nCLOSED\r\n",
			expected: []string{"", "+IPD,6:ab\r\ncd", "", "CLOSED"},
		},
		{
			name:     "Inbound frame with remote info",
			input:    "+IPD,4,10.0.0.2,4560:abcdOK\r\n",
			expected: []string{"+IPD,4,10.0.0.2,4560:abcd", "OK"},
		},
		{
			name:     "Malformed inbound header falls back to lines",
			input:    "+IPD,x:abc\r\nOK\r\n",
			expected: []string{"+IPD,x:abc", "OK"},
		},
		{
			name:     "Empty lines handling",
			input:    "\r\n\r\nAT\r\nOK\r\n\r\n",
			expected: []string{"", "", "AT", "OK", ""},
		},
		// EOF scenarios - testing atEOF functionality
		{
			name:     "Incomplete line at EOF",
			input:    "AT+RST\r\nready",
			expected: []string{"AT+RST", "ready"},
		},
		{
			name:     "Truncated inbound frame at EOF",
			input:    "+IPD,8:abc",
			expected: []string{"+IPD,8:abc"},
		},
		{
			name:     "Inbound header without colon at EOF",
			input:    "+IPD,8",
			expected: []string{"+IPD,8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []string
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(at.Splitter)

			for scanner.Scan() {
				tokens = append(tokens, scanner.Text())
			}

			if err := scanner.Err(); err != nil {
				t.Fatalf("Scanner error: %v", err)
			}

			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d.\nExpected: %q\nGot: %q",
					len(tt.expected), len(tokens), tt.expected, tokens)
			}

			for i, expected := range tt.expected {
				if tokens[i] != expected {
					t.Errorf("Token %d: expected %q, got %q", i, expected, tokens[i])
				}
			}
		})
	}
}

func TestReceivedPayload(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		payload string
		ok      bool
	}{
		{name: "Plain frame", token: "+IPD,3:abc", payload: "abc", ok: true},
		{name: "Frame with remote info", token: "+IPD,2,10.0.0.2,4560:hi", payload: "hi", ok: true},
		{name: "Empty frame", token: "+IPD,0:", payload: "", ok: true},
		{name: "Truncated frame", token: "+IPD,4:abc", ok: false},
		{name: "Not a frame", token: "OK", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := at.ReceivedPayload([]byte(tt.token))
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && string(payload) != tt.payload {
				t.Errorf("expected payload %q, got %q", tt.payload, payload)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected at.ResponseType
	}{
		// Final responses
		{name: "OK response", input: "OK", expected: at.TypeFinal},
		{name: "ERROR response", input: "ERROR", expected: at.TypeFinal},
		{name: "FAIL response", input: "FAIL", expected: at.TypeFinal},
		{name: "SEND OK response", input: "SEND OK", expected: at.TypeFinal},

		// URCs
		{name: "Inbound data", input: "+IPD,4:abcd", expected: at.TypeURC},
		{name: "Connection closed", input: "CLOSED", expected: at.TypeURC},
		{name: "WiFi dropped", input: "WIFI DISCONNECT", expected: at.TypeURC},
		{name: "WiFi joined", input: "WIFI CONNECTED", expected: at.TypeURC},
		{name: "Address assigned", input: "WIFI GOT IP", expected: at.TypeURC},

		// Data responses
		{name: "Command echo", input: "AT+CIPMUX=0", expected: at.TypeData},
		{name: "Join failure reason", input: "+CWJAP:1", expected: at.TypeData},
		{name: "Module banner", input: "ready", expected: at.TypeData},
		{name: "Transport opened", input: "CONNECT", expected: at.TypeData},

		// Prompt
		{name: "Payload prompt", input: ">", expected: at.TypePrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := at.Classify(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v for input %q", tt.expected, result, tt.input)
			}
		})
	}
}
