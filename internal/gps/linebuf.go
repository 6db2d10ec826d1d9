package gps

import "strings"

// lineBuffer reassembles sentences from arbitrarily split input.
type lineBuffer struct {
	partial string
}

func (b *lineBuffer) write(chunk string) {
	b.partial += chunk
}

// next returns the next complete line that starts with '$'. Lines end at
// "\n" or "\r\n"; anything after the last terminator stays buffered.
func (b *lineBuffer) next() (string, bool) {
	for {
		i := strings.IndexByte(b.partial, '\n')
		if i == -1 {
			return "", false
		}
		line := strings.TrimSuffix(b.partial[:i], "\r")
		b.partial = b.partial[i+1:]
		if strings.HasPrefix(line, "$") {
			return line, true
		}
	}
}

// pending returns the buffered text that has no terminator yet.
func (b *lineBuffer) pending() string { return b.partial }
