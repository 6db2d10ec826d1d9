package nmea

import (
	"encoding/hex"
	"fmt"
	"strings"

	gonmea "github.com/adrianmo/go-nmea"
)

// Frame is one sentence split into its wire words.
type Frame struct {
	Raw    string
	Talker string
	// Type is the address with the talker prefix removed (GPGGA -> GGA).
	Type string
	// Fields is the full word list: Fields[0] is the address (without '$'),
	// followed by every data field in wire order (empty strings kept), and
	// the two checksum characters last. Per-type word counts refer to
	// len(Fields).
	Fields   []string
	Checksum string
	// Valid reports whether the XOR of the bytes between '$' and '*'
	// equals Checksum.
	Valid bool
}

func notSentence(reason string) error {
	return fmt.Errorf("%w: %s", ErrNotSentence, reason)
}

// ParseFrame validates the envelope of line and splits it into words.
// It does not look at the sentence type beyond extracting it.
func ParseFrame(line string) (Frame, error) {
	if len(line) < 6 {
		return Frame{}, notSentence("too short")
	}
	if line[0] != '$' {
		return Frame{}, notSentence("missing '$'")
	}
	star := strings.IndexByte(line[1:], '*')
	if star == -1 {
		return Frame{}, notSentence("missing checksum")
	}
	star++
	if len(line)-star-1 < 2 {
		return Frame{}, notSentence("short checksum")
	}
	comma := strings.IndexByte(line, ',')
	if comma == -1 || comma > star {
		return Frame{}, notSentence("missing fields")
	}

	ck := strings.TrimSpace(line[star+1:])
	if len(ck) < 2 {
		return Frame{}, notSentence("short checksum")
	}
	ck = ck[:2]
	if _, err := hex.DecodeString(ck); err != nil {
		return Frame{}, notSentence("bad checksum")
	}

	body := line[1:star]
	address := line[1:comma]

	fields := make([]string, 0, 24)
	fields = append(fields, address)
	start := comma + 1
	for i := start; i < star; i++ {
		if line[i] == ',' {
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	fields = append(fields, line[start:star], ck)

	f := Frame{
		Raw:      line,
		Fields:   fields,
		Checksum: ck,
		Valid:    strings.EqualFold(gonmea.Checksum(body), ck),
	}
	if len(address) >= 2 {
		f.Talker = address[:2]
		f.Type = address[2:]
	}
	return f, nil
}
