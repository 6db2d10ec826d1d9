package nmea

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KnotsToKmh converts knots to kilometers per hour.
const KnotsToKmh = 1.852

// FixQuality is the GGA quality indicator.
type FixQuality string

const (
	QualityFix       FixQuality = "fix"
	QualityDGPS      FixQuality = "dgps-fix"
	QualityPPS       FixQuality = "pps-fix"
	QualityRTK       FixQuality = "rtk"
	QualityRTKFloat  FixQuality = "rtk-float"
	QualityEstimated FixQuality = "estimated"
	QualityManual    FixQuality = "manual"
	QualitySimulated FixQuality = "simulated"
)

// Code 0 (no fix) decodes to nil.
var ggaQualities = map[int]FixQuality{
	1: QualityFix,
	2: QualityDGPS,
	3: QualityPPS,
	4: QualityRTK,
	5: QualityRTKFloat,
	6: QualityEstimated,
	7: QualityManual,
	8: QualitySimulated,
}

// FixType is the GSA fix dimensionality.
type FixType string

const (
	Fix2D FixType = "2D"
	Fix3D FixType = "3D"
)

// Code 1 (no fix) decodes to nil.
var gsaFixes = map[int]FixType{
	2: Fix2D,
	3: Fix3D,
}

// SelectionMode is the GSA 2D/3D selection mode.
type SelectionMode string

const (
	ModeManual    SelectionMode = "manual"
	ModeAutomatic SelectionMode = "automatic"
)

var gsaModes = map[string]SelectionMode{
	"M": ModeManual,
	"A": ModeAutomatic,
}

// Status is the RMC/GLL data status.
type Status string

const (
	StatusActive Status = "active"
	StatusVoid   Status = "void"
)

var statuses = map[string]Status{
	"A": StatusActive,
	"V": StatusVoid,
}

// FAAMode is the positioning mode indicator added in NMEA 2.3.
type FAAMode string

const (
	FAAAutonomous   FAAMode = "autonomous"
	FAADifferential FAAMode = "differential"
	FAAEstimated    FAAMode = "estimated"
	FAAManual       FAAMode = "manual input"
	FAASimulated    FAAMode = "simulated"
	FAANotValid     FAAMode = "not valid"
	FAAPrecise      FAAMode = "precise"
	FAARTK          FAAMode = "rtk"
	FAARTKFloat     FAAMode = "rtk-float"
)

var faaModes = map[string]FAAMode{
	"A": FAAAutonomous,
	"D": FAADifferential,
	"E": FAAEstimated,
	"M": FAAManual,
	"S": FAASimulated,
	"N": FAANotValid,
	"P": FAAPrecise,
	"R": FAARTK,
	"F": FAARTKFloat,
}

// NMEA 4.10 system ids. 0 is what some receivers emit for QZSS.
var systemIDs = map[int]string{
	0: "QZSS",
	1: "GPS",
	2: "GLONASS",
	3: "Galileo",
	4: "BeiDou",
	5: "QZSS",
	6: "NavIC",
}

// TalkerSystem names the constellation behind a talker prefix. Unknown
// talkers are returned unchanged.
func TalkerSystem(talker string) string {
	switch talker {
	case "GP":
		return "GPS"
	case "GQ":
		return "QZSS"
	case "GL":
		return "GLONASS"
	case "GA":
		return "Galileo"
	case "GB":
		return "BeiDou"
	default:
		return talker
	}
}

// ParseTime combines hhmmss[.sss] with an optional ddmmyy or ddmmyyyy date.
// Without a date the result carries only the time of day (on 0000-01-01).
// An empty or malformed time yields nil.
func ParseTime(hms, date string) *time.Time {
	if len(hms) < 6 {
		return nil
	}
	hh, err1 := strconv.Atoi(hms[0:2])
	mm, err2 := strconv.Atoi(hms[2:4])
	ss, err3 := strconv.Atoi(hms[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}

	ms := 0
	if dot := strings.IndexByte(hms, '.'); dot != -1 && dot+1 < len(hms) {
		frac := hms[dot+1:]
		if len(frac) > 3 {
			frac = frac[:3]
		}
		v, err := strconv.Atoi(frac)
		if err != nil {
			return nil
		}
		for i := len(frac); i < 3; i++ {
			v *= 10
		}
		ms = v
	}

	year, month, day := 0, 1, 1
	if date != "" {
		if len(date) != 6 && len(date) != 8 {
			return nil
		}
		d, err1 := strconv.Atoi(date[0:2])
		m, err2 := strconv.Atoi(date[2:4])
		y, err3 := strconv.Atoi(date[4:])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil
		}
		if len(date) == 6 {
			y += 2000
		}
		year, month, day = y, m, d
	}

	t := time.Date(year, time.Month(month), day, hh, mm, ss, ms*int(time.Millisecond), time.UTC)
	return &t
}

// ParseCoord converts DDMM.mmmm (N/S) or DDDMM.mmmm (E/W) to signed decimal
// degrees. An empty coordinate or unknown direction yields nil.
func ParseCoord(coord, dir string) *float64 {
	if coord == "" {
		return nil
	}
	var width int
	sign := 1.0
	switch dir {
	case "S":
		sign = -1
		width = 2
	case "N":
		width = 2
	case "W":
		sign = -1
		width = 3
	case "E":
		width = 3
	default:
		return nil
	}
	if len(coord) <= width {
		return nil
	}
	deg, err := strconv.ParseFloat(coord[:width], 64)
	if err != nil {
		return nil
	}
	mins, err := strconv.ParseFloat(coord[width:], 64)
	if err != nil {
		return nil
	}
	v := sign * (deg + mins/60)
	return &v
}

// ParseNumber returns nil for empty or non-numeric fields.
func ParseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseInt returns nil for empty or non-integer fields.
func ParseInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

// ParseKnots converts a speed in knots to km/h.
func ParseKnots(s string) *float64 {
	v := ParseNumber(s)
	if v == nil {
		return nil
	}
	kmh := *v * KnotsToKmh
	return &kmh
}

// ParseDistance accepts a value in meters; the unit must be "M" or empty.
func ParseDistance(num, unit string) (*float64, error) {
	if unit != "M" && unit != "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedUnit, unit)
	}
	return ParseNumber(num), nil
}

// ParseVariation signs the magnetic variation (west is negative).
func ParseVariation(v, dir string) *float64 {
	if v == "" || dir == "" {
		return nil
	}
	n := ParseNumber(v)
	if n == nil {
		return nil
	}
	if dir == "W" {
		*n = -*n
	}
	return n
}

func lookupCode[T any](table map[string]T, code, what string) (*T, error) {
	if code == "" {
		return nil, nil
	}
	v, ok := table[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidField, what, code)
	}
	return &v, nil
}

// lookupNumericCode treats skip as a known code that means "absent".
func lookupNumericCode[T any](table map[int]T, code, what string, skip int) (*T, error) {
	if code == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidField, what, code)
	}
	if n == skip {
		return nil, nil
	}
	v, ok := table[n]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidField, what, code)
	}
	return &v, nil
}

// ParseQuality decodes the GGA quality indicator.
func ParseQuality(code string) (*FixQuality, error) {
	return lookupNumericCode(ggaQualities, code, "GGA fix", 0)
}

// ParseFixType decodes the GSA fix dimensionality.
func ParseFixType(code string) (*FixType, error) {
	return lookupNumericCode(gsaFixes, code, "GSA fix", 1)
}

// ParseSelectionMode decodes the GSA mode letter.
func ParseSelectionMode(code string) (*SelectionMode, error) {
	return lookupCode(gsaModes, code, "GSA mode")
}

// ParseStatus decodes the RMC/GLL status letter.
func ParseStatus(code string) (*Status, error) {
	return lookupCode(statuses, code, "RMC/GLL status")
}

// ParseFAA decodes the FAA mode indicator.
func ParseFAA(code string) (*FAAMode, error) {
	return lookupCode(faaModes, code, "FAA mode")
}

// ParseSystemID decodes an NMEA 4.10 system id into its numeric value and
// constellation name.
func ParseSystemID(code string) (*int, *string, error) {
	if code == "" {
		return nil, nil, nil
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: system id %q", ErrInvalidField, code)
	}
	name, ok := systemIDs[n]
	if !ok {
		return nil, nil, fmt.Errorf("%w: system id %q", ErrInvalidField, code)
	}
	return &n, &name, nil
}
