// Package osc encodes and decodes single Open Sound Control messages.
//
// Only the argument types string ('s'), int32 ('i') and float32 ('f') are
// supported. Every field of an encoded message is aligned to 4 bytes:
// strings are NUL terminated and NUL padded, numbers are big-endian.
package osc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Type tags
const (
	TagString  byte = 's'
	TagInt32   byte = 'i'
	TagFloat32 byte = 'f'

	tagPrefix byte = ','
)

// Arg is a typed message argument: String, Int32 or Float32.
type Arg interface {
	// Tag returns the type tag character of the argument.
	Tag() byte
	// size is the number of bytes the argument occupies in the parameter block.
	size() int
	// put writes the encoded argument into b and returns the bytes written.
	put(b []byte) int
}

// String is an OSC string argument.
type String string

// Int32 is an OSC int32 argument.
type Int32 int32

// Float32 is an OSC float32 argument.
type Float32 float32

func (String) Tag() byte  { return TagString }
func (Int32) Tag() byte   { return TagInt32 }
func (Float32) Tag() byte { return TagFloat32 }

func (s String) size() int { return padded(len(s)) }
func (Int32) size() int    { return 4 }
func (Float32) size() int  { return 4 }

func (s String) put(b []byte) int {
	n := s.size()
	copy(b, s)
	clear(b[len(s):n])
	return n
}

func (v Int32) put(b []byte) int {
	binary.BigEndian.PutUint32(b, uint32(v))
	return 4
}

func (v Float32) put(b []byte) int {
	binary.BigEndian.PutUint32(b, math.Float32bits(float32(v)))
	return 4
}

// padded returns the length of a NUL terminated field holding n bytes,
// rounded up to the next multiple of 4.
func padded(n int) int {
	return (n/4 + 1) * 4
}

// Message is a single OSC message.
type Message struct {
	Address string
	Args    []Arg
}

// Build encodes address and args into one OSC packet.
//
// Build panics if address is empty; use Message.MarshalBinary to get an
// error instead.
func Build(address string, args ...Arg) []byte {
	if address == "" {
		panic("osc: empty address")
	}
	return encode(address, args)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return encode(m.Address, m.Args), nil
}

// Validate reports whether the message encodes to a packet that decodes back
// to the same message.
func (m Message) Validate() error {
	if err := ValidateAddress(m.Address); err != nil {
		return err
	}
	for i, a := range m.Args {
		if s, ok := a.(String); ok && strings.IndexByte(string(s), 0) >= 0 {
			return fmt.Errorf("argument %d: %w", i, ErrEmbeddedNUL)
		}
	}
	return nil
}

// ValidateAddress reports whether address can start an OSC message.
func ValidateAddress(address string) error {
	if address == "" {
		return ErrEmptyAddress
	}
	if address[0] != '/' {
		return ErrAddressPrefix
	}
	if strings.IndexByte(address, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	return nil
}

// Tags returns the type tag string of the message, including the leading comma.
func (m Message) Tags() string {
	tags := make([]byte, 0, 1+len(m.Args))
	tags = append(tags, tagPrefix)
	for _, a := range m.Args {
		tags = append(tags, a.Tag())
	}
	return string(tags)
}

func (m Message) String() string {
	var sb strings.Builder
	sb.WriteString(m.Address)
	sb.WriteByte(' ')
	sb.WriteString(m.Tags())
	for _, a := range m.Args {
		sb.WriteByte(' ')
		sb.WriteString(FormatArg(a))
	}
	return sb.String()
}

// encode computes the packet length up front and writes every block once.
func encode(address string, args []Arg) []byte {
	addrLen := padded(len(address))
	tagLen := padded(1 + len(args))

	size := addrLen + tagLen
	for _, a := range args {
		size += a.size()
	}

	b := make([]byte, size)
	copy(b, address)

	b[addrLen] = tagPrefix
	for i, a := range args {
		b[addrLen+1+i] = a.Tag()
	}

	off := addrLen + tagLen
	for _, a := range args {
		off += a.put(b[off:])
	}
	return b
}
