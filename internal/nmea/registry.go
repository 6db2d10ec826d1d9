package nmea

import (
	"fmt"
	"sort"
	"time"
)

type decodeFunc func(d *Decoder, f Frame) (Sentence, error)

var decoders = map[string]decodeFunc{
	TypeGGA: decodeGGA,
	TypeGSA: decodeGSA,
	TypeRMC: decodeRMC,
	TypeVTG: decodeVTG,
	TypeGSV: decodeGSV,
	TypeGLL: decodeGLL,
	TypeZDA: decodeZDA,
	TypeGST: decodeGST,
	TypeHDT: decodeHDT,
	TypeGRS: decodeGRS,
	TypeGBS: decodeGBS,
	TypeGNS: decodeGNS,
	TypeTXT: decodeTXT,
}

// Supported reports whether sentences of type typ can be decoded.
func Supported(typ string) bool {
	_, ok := decoders[typ]
	return ok
}

// SupportedTypes returns the decodable type tags in sorted order.
func SupportedTypes() []string {
	out := make([]string, 0, len(decoders))
	for typ := range decoders {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Decoder decodes sentences and keeps the little state some types need
// across lines (multi-part TXT messages). A Decoder is not safe for
// concurrent use.
type Decoder struct {
	txt map[string][]string
}

func NewDecoder() *Decoder {
	return &Decoder{txt: make(map[string][]string)}
}

// Decode parses line into one of the sentence structs.
//
// Errors wrapping ErrNotSentence or ErrUnknownType mean line is not a
// decodable sentence. A *DecodeError means a known sentence type carried a
// bad word count, an unknown code, or an unsupported unit.
func (d *Decoder) Decode(line string) (Sentence, error) {
	f, err := ParseFrame(line)
	if err != nil {
		return nil, err
	}
	fn, ok := decoders[f.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
	return fn(d, f)
}

// Parse decodes a single line without keeping any state. Multi-part TXT
// messages only complete when every part is in the same line, i.e. when the
// message has one part; use a Decoder to reassemble longer ones.
func Parse(line string) (Sentence, error) {
	return NewDecoder().Decode(line)
}

func lengthIn(f Frame, counts ...int) bool {
	for _, n := range counts {
		if len(f.Fields) == n {
			return true
		}
	}
	return false
}

// fieldReader reads positional words from a frame. The first enum or unit
// failure sticks; later reads still return values so decoders stay linear.
type fieldReader struct {
	f   Frame
	err error
}

func newFieldReader(f Frame) *fieldReader {
	return &fieldReader{f: f}
}

func (r *fieldReader) word(i int) string {
	if i < 0 || i >= len(r.f.Fields) {
		return ""
	}
	return r.f.Fields[i]
}

func (r *fieldReader) setErr(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

func (r *fieldReader) number(i int) *float64 { return ParseNumber(r.word(i)) }

func (r *fieldReader) integer(i int) *int { return ParseInt(r.word(i)) }

func (r *fieldReader) knots(i int) *float64 { return ParseKnots(r.word(i)) }

func (r *fieldReader) coord(i, dir int) *float64 {
	return ParseCoord(r.word(i), r.word(dir))
}

func (r *fieldReader) clock(i int) *time.Time { return ParseTime(r.word(i), "") }

func (r *fieldReader) distance(i, unit int) *float64 {
	v, err := ParseDistance(r.word(i), r.word(unit))
	r.setErr(err)
	return v
}

func (r *fieldReader) text(i int) *string {
	s := r.word(i)
	if s == "" {
		return nil
	}
	return &s
}

func readEnum[T any](r *fieldReader, i int, parse func(string) (*T, error)) *T {
	v, err := parse(r.word(i))
	r.setErr(err)
	return v
}

// Err returns the first failure as a *DecodeError.
func (r *fieldReader) Err() error {
	if r.err == nil {
		return nil
	}
	return &DecodeError{Kind: kindOf(r.err), Type: r.f.Type, Raw: r.f.Raw, Err: r.err}
}
