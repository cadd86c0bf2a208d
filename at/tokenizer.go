package at

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// Splitter is used for tokenizing ESP8266 AT responses. It uses the
// signature of bufio.SplitFunc so it can be directly used with bufio.Scanner.
//
// It splits the input by CRLF line endings, recognizes the CIPSEND payload
// prompt (">") and keeps "+IPD,<n>:<payload>" frames whole, since their
// payload is raw bytes that may contain CRLF.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	// 1. Match payload prompt
	if len(data) > 0 && data[0] == Prompt[0] {
		return 1, data[:1], nil
	}

	// 2. Match inbound data frames
	if bytes.HasPrefix(data, []byte(UrcReceive)) {
		if end, ok := FrameEnd(data); ok {
			if end <= len(data) {
				return end, data[:end], nil
			}
			if atEOF {
				return len(data), data, nil
			}
			return 0, nil, nil
		}
		if bytes.IndexByte(data, ':') < 0 && !atEOF {
			return 0, nil, nil
		}
		// Malformed header, fall back to line splitting.
	}

	// 3. Match standard line ending with CRLF
	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + len(CRLF), data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// FrameEnd returns the offset just past the payload of the +IPD frame at the
// start of data. ok is false while the header is incomplete or malformed.
func FrameEnd(data []byte) (end int, ok bool) {
	colon := bytes.IndexByte(data, ':')
	if colon < 0 {
		return 0, false
	}
	header := data[len(UrcReceive):colon]
	// +IPD,<len>,<remote ip>,<remote port>: when CIPDINFO is enabled
	if i := bytes.IndexByte(header, ','); i >= 0 {
		header = header[:i]
	}
	n, err := strconv.Atoi(string(header))
	if err != nil || n < 0 {
		return 0, false
	}
	return colon + 1 + n, true
}

// ReceivedPayload extracts the payload carried by a complete +IPD token.
func ReceivedPayload(token []byte) ([]byte, bool) {
	if !bytes.HasPrefix(token, []byte(UrcReceive)) {
		return nil, false
	}
	end, ok := FrameEnd(token)
	if !ok || end != len(token) {
		return nil, false
	}
	colon := bytes.IndexByte(token, ':')
	return token[colon+1:], true
}

// Classify identifies the nature of the module output
func Classify(line string) ResponseType {
	if line == Prompt {
		return TypePrompt
	}

	// Direct matches for final results
	switch line {
	case OK, ERROR, FAIL, SendOK, SendFail:
		return TypeFinal
	}

	switch {
	case strings.HasPrefix(line, UrcReceive),
		line == UrcClosed,
		line == UrcWifiDisconnect,
		line == WifiConnected,
		line == WifiGotIP:
		return TypeURC
	default:
		return TypeData
	}
}
