package osc

import (
	"fmt"
	"strconv"
)

// ParseArg converts the textual notation used on the command line and in
// HTTP requests into an argument.
//
// A type prefix forces the type: "i:42", "f:440", "s:hello". Without a
// prefix the value is an Int32 if it parses as one, then a Float32, and a
// String otherwise.
func ParseArg(s string) (Arg, error) {
	if len(s) >= 2 && s[1] == ':' {
		v := s[2:]
		switch s[0] {
		case TagInt32:
			n, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("osc: invalid int32 %q: %w", v, err)
			}
			return Int32(n), nil
		case TagFloat32:
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return nil, fmt.Errorf("osc: invalid float32 %q: %w", v, err)
			}
			return Float32(f), nil
		case TagString:
			return String(v), nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return Int32(n), nil
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return Float32(f), nil
	}
	return String(s), nil
}

// ParseArgs applies ParseArg to every element of ss.
func ParseArgs(ss []string) ([]Arg, error) {
	args := make([]Arg, 0, len(ss))
	for i, s := range ss {
		a, err := ParseArg(s)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args = append(args, a)
	}
	return args, nil
}

// FormatArg renders a in the notation accepted by ParseArg.
func FormatArg(a Arg) string {
	switch v := a.(type) {
	case String:
		return "s:" + string(v)
	case Int32:
		return "i:" + strconv.FormatInt(int64(v), 10)
	case Float32:
		return "f:" + strconv.FormatFloat(float64(v), 'g', -1, 32)
	default:
		return fmt.Sprintf("%c:%v", a.Tag(), a)
	}
}
