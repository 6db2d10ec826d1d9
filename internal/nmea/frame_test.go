package nmea

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nmeaLine wraps payload (without '$' and '*') in a checksummed sentence.
func nmeaLine(payload string) string {
	var cs byte
	for i := 0; i < len(payload); i++ {
		cs ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, cs)
}

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame("$GPGSA,A,3,29,26,31,21,,,,,,,,,2.0,1.7,1.0*39")
	require.NoError(t, err)
	assert.Equal(t, "GP", f.Talker)
	assert.Equal(t, "GSA", f.Type)
	assert.Equal(t, "39", f.Checksum)
	assert.True(t, f.Valid)
	require.Len(t, f.Fields, 19)
	assert.Equal(t, "GPGSA", f.Fields[0])
	assert.Equal(t, "A", f.Fields[1])
	assert.Equal(t, "31", f.Fields[5])
	assert.Equal(t, "", f.Fields[7])
	assert.Equal(t, "1.0", f.Fields[17])
	assert.Equal(t, "39", f.Fields[18])
}

func TestParseFrameChecksumMismatchIsNotAnError(t *testing.T) {
	f, err := ParseFrame("$GPGSA,A,3,29,26,31,21,,,,,,,,,2.0,1.7,1.0*38")
	require.NoError(t, err)
	assert.False(t, f.Valid)
}

func TestParseFrameLowercaseChecksum(t *testing.T) {
	f, err := ParseFrame("$GPVTG,2.93,X,,M,2.28,N,4.2,K*6a")
	require.NoError(t, err)
	assert.True(t, f.Valid)
}

func TestParseFrameTrailingWhitespace(t *testing.T) {
	f, err := ParseFrame("$GPHDT,274.07,T*03 \r")
	require.NoError(t, err)
	assert.True(t, f.Valid)
	assert.Equal(t, []string{"GPHDT", "274.07", "T", "03"}, f.Fields)
}

func TestParseFrameRejects(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"short":          "$GP*1",
		"no dollar":      "GPGGA,1,2*00",
		"no star":        "$GPGGA,123519,4807.038,N,01131.324,E,1,08,0.9,545.4,M,46.9,M,,",
		"one char after": "$GPGGA,1,2*0",
		"no comma":       "$GPGGA*00",
		"comma after *":  "$GPGGA*00,1",
		"bad hex":        "$GPGGA,1,2*ZZ",
		"plain text":     "foo bar baz",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFrame(line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotSentence), "err=%v", err)
		})
	}
}

func TestNMEALineHelperMatchesWire(t *testing.T) {
	assert.Equal(t, "$GPHDT,274.07,T*03", nmeaLine("GPHDT,274.07,T"))
}
