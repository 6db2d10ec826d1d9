//go:build !linux || (!arm && !arm64)

package pps

import (
	"fmt"
	"io"
)

func openLine(pin int, onEdge func()) (io.Closer, error) {
	return nil, fmt.Errorf("gpio unsupported on this platform")
}

var openLineFn = openLine
