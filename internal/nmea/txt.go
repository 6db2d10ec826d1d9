package nmea

import (
	"strconv"
	"strings"
)

// $--TXT,total,num,id,text*hh
//
// Parts are buffered per text id until the part numbered total arrives.
// Part 1 starts a fresh message for its id.
func decodeTXT(d *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 6) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := TXT{
		BaseSentence:   newBase(f),
		SentenceAmount: r.integer(1),
		SentenceNumber: r.integer(2),
		TextID:         r.word(3),
		RawMessages:    []string{},
	}
	part := unescapeText(r.word(4))

	if s.SentenceNumber != nil && *s.SentenceNumber <= 1 {
		delete(d.txt, s.TextID)
	}
	d.txt[s.TextID] = append(d.txt[s.TextID], part)

	if s.SentenceAmount == nil || s.SentenceNumber == nil || *s.SentenceNumber >= *s.SentenceAmount {
		parts := d.txt[s.TextID]
		delete(d.txt, s.TextID)
		msg := strings.Join(parts, "")
		s.Message = &msg
		s.Completed = true
		s.RawMessages = parts
	}
	return s, nil
}

// unescapeText expands ^HH sequences. Malformed escapes are kept verbatim.
func unescapeText(s string) string {
	if strings.IndexByte(s, '^') == -1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '^' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
