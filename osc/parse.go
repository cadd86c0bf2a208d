package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Parse decodes a single OSC message.
func Parse(b []byte) (Message, error) {
	if len(b)%4 != 0 {
		return Message{}, ErrMisaligned
	}

	address, n, err := readString(b)
	if err != nil {
		return Message{}, fmt.Errorf("read address: %w", err)
	}
	if err := ValidateAddress(address); err != nil {
		return Message{}, err
	}
	b = b[n:]

	tags, n, err := readString(b)
	if err != nil {
		return Message{}, fmt.Errorf("read type tags: %w", err)
	}
	if tags == "" || tags[0] != tagPrefix {
		return Message{}, ErrMissingTags
	}
	b = b[n:]

	msg := Message{Address: address}
	if len(tags) > 1 {
		msg.Args = make([]Arg, 0, len(tags)-1)
	}
	for i := 1; i < len(tags); i++ {
		switch tags[i] {
		case TagString:
			s, n, err := readString(b)
			if err != nil {
				return Message{}, fmt.Errorf("read argument %d: %w", i-1, err)
			}
			msg.Args = append(msg.Args, String(s))
			b = b[n:]

		case TagInt32:
			if len(b) < 4 {
				return Message{}, fmt.Errorf("read argument %d: %w", i-1, ErrTruncated)
			}
			msg.Args = append(msg.Args, Int32(int32(binary.BigEndian.Uint32(b))))
			b = b[4:]

		case TagFloat32:
			if len(b) < 4 {
				return Message{}, fmt.Errorf("read argument %d: %w", i-1, ErrTruncated)
			}
			msg.Args = append(msg.Args, Float32(math.Float32frombits(binary.BigEndian.Uint32(b))))
			b = b[4:]

		default:
			return Message{}, fmt.Errorf("%w: %q", ErrUnknownTag, tags[i])
		}
	}

	if len(b) != 0 {
		return Message{}, ErrTrailingBytes
	}
	return msg, nil
}

// readString reads a NUL terminated, 4-byte aligned string and returns it
// along with the number of bytes it occupies.
func readString(b []byte) (string, int, error) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", 0, ErrTruncated
	}
	n := padded(i)
	if n > len(b) {
		return "", 0, ErrTruncated
	}
	return string(b[:i]), n, nil
}
