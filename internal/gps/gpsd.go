package gps

import (
	"encoding/json"
	"strings"
)

const gpsdDefaultAddr = "127.0.0.1:2947"

// gpsdWatch asks gpsd to relay the receiver's sentences verbatim instead
// of its own JSON fixes.
var gpsdWatch = []byte(`?WATCH={"enable":true,"nmea":true}` + "\n")

// gpsdReport is the common part of every gpsd JSON message.
type gpsdReport struct {
	Class   string `json:"class"`
	Message string `json:"message,omitempty"`

	// DEVICES
	Devices []struct {
		Path   string `json:"path"`
		Driver string `json:"driver"`
	} `json:"devices,omitempty"`

	// VERSION
	Release string `json:"release,omitempty"`
}

// parseGPSDReport reports whether line is a gpsd JSON message rather than a
// relayed sentence. Even in NMEA mode gpsd interleaves VERSION, DEVICES and
// WATCH objects with the raw stream.
func parseGPSDReport(line string) (gpsdReport, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return gpsdReport{}, false
	}
	var r gpsdReport
	if err := json.Unmarshal([]byte(line), &r); err != nil {
		return gpsdReport{Class: "INVALID", Message: err.Error()}, true
	}
	r.Class = strings.ToUpper(strings.TrimSpace(r.Class))
	return r, true
}
