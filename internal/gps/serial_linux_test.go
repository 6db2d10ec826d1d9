//go:build linux

package gps

import (
	"path/filepath"
	"testing"
)

func TestOpenSerial_RejectsUnknownBaud(t *testing.T) {
	if _, err := openSerial("/dev/null", 1234); err == nil {
		t.Fatalf("expected error for baud 1234")
	}
}

func TestOpenSerial_MissingDevice(t *testing.T) {
	if _, err := openSerial(filepath.Join(t.TempDir(), "ttyACM9"), 9600); err == nil {
		t.Fatalf("expected error for missing device")
	}
}
