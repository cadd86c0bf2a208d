package modem

import (
	"bytes"
	"log/slog"
	"strings"

	"i4.energy/across/oscgw/at"
)

// Push is an unsolicited notification from the module, such as data received
// on the open transport or a dropped WiFi link.
type Push struct {
	// Line is the notification as received, e.g. "CLOSED", or the header of
	// an inbound frame, e.g. "+IPD,4".
	Line string
	// Payload holds the bytes of an inbound "+IPD" frame, nil otherwise.
	Payload []byte
}

// maxPending bounds the bytes kept while waiting for the end of a line or
// frame. It fits the largest frame the module delivers.
const maxPending = 4096

// maxFrameHeader bounds "+IPD,<len>[,<remote ip>,<remote port>]:". A longer
// run without ':' is not a frame.
const maxFrameHeader = 64

type frameState int

const (
	notFrame frameState = iota
	partialFrame
	completeFrame
)

// demux routes everything read from the transport. Inbound "+IPD" frames go
// only to the push channel, the remaining output is returned for the AT wait
// and its unsolicited lines are forwarded as pushes too. It sees every byte,
// whichever reader claimed the transport, so pushes are not lost while an AT
// step is waiting and frame payloads never reach the response matcher.
type demux struct {
	// frame holds the start of an inbound frame until it is complete
	frame []byte
	// line holds the unterminated tail of other output
	line   []byte
	out    chan Push
	logger *slog.Logger
}

func newDemux(size int, logger *slog.Logger) *demux {
	return &demux{
		out:    make(chan Push, size),
		logger: logger,
	}
}

// feed consumes p and returns, in order, the bytes that are not part of an
// inbound frame. Bytes that may start a frame are held back until the frame
// is complete or turns out not to be one.
func (d *demux) feed(p []byte) []byte {
	data := append(d.frame, p...)
	d.frame = nil

	var rest []byte
	for len(data) > 0 {
		i := bytes.IndexByte(data, at.UrcReceive[0])
		if i < 0 {
			rest = append(rest, data...)
			break
		}
		rest = append(rest, data[:i]...)
		data = data[i:]

		end, state := frameAt(data)
		switch state {
		case partialFrame:
			d.frame = bytes.Clone(data)
			data = nil
		case completeFrame:
			d.dispatchFrame(data[:end])
			data = data[end:]
		default:
			rest = append(rest, data[0])
			data = data[1:]
		}
	}

	d.splitLines(rest)
	return rest
}

// frameAt reports whether data starts with an inbound frame and, when it is
// complete, where it ends.
func frameAt(data []byte) (int, frameState) {
	prefix := []byte(at.UrcReceive)
	if len(data) < len(prefix) {
		if bytes.HasPrefix(prefix, data) {
			return 0, partialFrame
		}
		return 0, notFrame
	}
	if !bytes.HasPrefix(data, prefix) {
		return 0, notFrame
	}

	colon := bytes.IndexByte(data, ':')
	if colon < 0 {
		if len(data) <= maxFrameHeader {
			return 0, partialFrame
		}
		return 0, notFrame
	}
	if colon > maxFrameHeader {
		return 0, notFrame
	}

	end, ok := at.FrameEnd(data)
	if !ok || end > maxPending {
		return 0, notFrame
	}
	if end > len(data) {
		return 0, partialFrame
	}
	return end, completeFrame
}

func (d *demux) splitLines(p []byte) {
	d.line = append(d.line, p...)

	consumed := 0
	for {
		advance, token, err := at.Splitter(d.line[consumed:], false)
		if err != nil || advance == 0 {
			break
		}
		d.dispatchLine(token)
		consumed += advance
	}

	rest := d.line[consumed:]
	if len(rest) > maxPending {
		rest = rest[len(rest)-maxPending:]
	}
	d.line = bytes.Clone(rest)
}

func (d *demux) dispatchLine(token []byte) {
	line := string(token)
	if line != at.Prompt {
		line = strings.TrimSpace(line)
	}
	if line == "" || at.Classify(line) != at.TypeURC {
		return
	}
	d.push(Push{Line: line})
}

func (d *demux) dispatchFrame(frame []byte) {
	payload, ok := at.ReceivedPayload(frame)
	if !ok {
		return
	}
	header := frame[:bytes.IndexByte(frame, ':')]
	d.push(Push{Line: string(header), Payload: bytes.Clone(payload)})
}

func (d *demux) push(p Push) {
	select {
	case d.out <- p:
	default:
		// Push channel is full - drop the notification
		d.logger.Warn("Dropping push notification", "line", p.Line)
	}
}
