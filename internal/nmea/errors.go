package nmea

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSentence is returned when a line does not have the shape of a
	// sentence at all ($, address, fields, *HH).
	ErrNotSentence = errors.New("nmea: not a sentence")
	// ErrUnknownType is returned for well-formed frames whose type has no decoder.
	ErrUnknownType = errors.New("nmea: unknown sentence type")

	ErrInvalidLength   = errors.New("invalid length")
	ErrInvalidField    = errors.New("invalid field")
	ErrUnsupportedUnit = errors.New("unknown unit")
)

// ErrorKind classifies a DecodeError.
type ErrorKind int

const (
	KindLength ErrorKind = iota + 1
	KindField
	KindUnit
)

func (k ErrorKind) String() string {
	switch k {
	case KindLength:
		return "length"
	case KindField:
		return "field"
	case KindUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// DecodeError is returned when a recognized sentence cannot be decoded.
type DecodeError struct {
	Kind ErrorKind
	Type string
	Raw  string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Kind == KindLength {
		return fmt.Sprintf("nmea: invalid %s length: %s", e.Type, e.Raw)
	}
	return fmt.Sprintf("nmea: %s: %v: %s", e.Type, e.Err, e.Raw)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsFrameError reports whether err means the input was not a decodable
// sentence (as opposed to a sentence that failed field decoding).
func IsFrameError(err error) bool {
	return errors.Is(err, ErrNotSentence) || errors.Is(err, ErrUnknownType)
}

func lengthError(f Frame) error {
	return &DecodeError{Kind: KindLength, Type: f.Type, Raw: f.Raw, Err: ErrInvalidLength}
}

func kindOf(err error) ErrorKind {
	if errors.Is(err, ErrUnsupportedUnit) {
		return KindUnit
	}
	return KindField
}
