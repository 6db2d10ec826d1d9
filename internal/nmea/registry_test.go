package nmea

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func clockOf(h, m, s, ms int) *time.Time {
	t := time.Date(0, 1, 1, h, m, s, ms*int(time.Millisecond), time.UTC)
	return &t
}

func TestParseGSA(t *testing.T) {
	line := "$GPGSA,A,3,29,26,31,21,,,,,,,,,2.0,1.7,1.0*39"
	s, err := Parse(line)
	require.NoError(t, err)
	got, ok := s.(GSA)
	require.True(t, ok, "got %T", s)

	assert.Equal(t, GSA{
		BaseSentence: BaseSentence{Type: TypeGSA, Talker: "GP", Raw: line, Valid: true},
		Mode:         ptr(ModeAutomatic),
		Fix:          ptr(Fix3D),
		Satellites:   []int{29, 26, 31, 21},
		PDOP:         ptr(2.0),
		HDOP:         ptr(1.7),
		VDOP:         ptr(1.0),
	}, got)
}

func TestParseGSASkipsMalformedPRN(t *testing.T) {
	s, err := Parse(nmeaLine("GPGSA,A,3,29,x7,31,,,,,,,,,,2.0,1.7,1.0"))
	require.NoError(t, err)
	assert.Equal(t, []int{29, 31}, s.(GSA).Satellites)
}

func TestParseGSASystemID(t *testing.T) {
	s, err := Parse("$GNGSA,A,3,80,71,73,79,69,,,,,,,,1.83,1.09,1.47,2*09")
	require.NoError(t, err)
	got := s.(GSA)
	assert.Equal(t, []int{80, 71, 73, 79, 69}, got.Satellites)
	require.NotNil(t, got.SystemID)
	assert.Equal(t, 2, *got.SystemID)
	assert.Equal(t, "GLONASS", *got.System)
}

func TestParseRMC(t *testing.T) {
	line := "$GPRMC,234919.000,A,4832.3914,N,00903.5500,E,2.28,2.93,260116,,*0D"
	s, err := Parse(line)
	require.NoError(t, err)
	got := s.(RMC)

	assert.True(t, got.ChecksumValid())
	assert.Equal(t, TypeRMC, got.DataType())
	assert.Equal(t, line, got.String())
	require.NotNil(t, got.Time)
	assert.True(t, time.Date(2016, 1, 26, 23, 49, 19, 0, time.UTC).Equal(*got.Time))
	assert.Equal(t, StatusActive, *got.Status)
	assert.InDelta(t, 48.539856666666665, *got.Lat, 1e-12)
	assert.InDelta(t, 9.059166666666666, *got.Lon, 1e-12)
	assert.InDelta(t, 4.22256, *got.Speed, 1e-9)
	assert.Equal(t, 2.93, *got.Track)
	assert.Nil(t, got.Variation)
	assert.Nil(t, got.FAA)
	assert.Nil(t, got.NavStatus)
}

func TestParseRMCExtended(t *testing.T) {
	s, err := Parse("$GPRMC,081836,A,3751.65,S,14507.36,E,000.0,360.0,130998,011.3,E,A,V*75")
	require.NoError(t, err)
	got := s.(RMC)
	assert.True(t, time.Date(2098, 9, 13, 8, 18, 36, 0, time.UTC).Equal(*got.Time))
	assert.InDelta(t, -37.86083333333333, *got.Lat, 1e-12)
	assert.Equal(t, 0.0, *got.Speed)
	assert.Equal(t, 11.3, *got.Variation)
	assert.Equal(t, FAAAutonomous, *got.FAA)
	assert.Equal(t, "V", *got.NavStatus)
}

func TestParseVTG(t *testing.T) {
	s, err := Parse("$GPVTG,2.93,T,,M,2.28,N,4.2,K*66")
	require.NoError(t, err)
	got := s.(VTG)
	assert.Equal(t, 2.93, *got.Track)
	assert.Nil(t, got.TrackMagnetic)
	assert.InDelta(t, 4.22256, *got.Speed, 1e-9)
	assert.Nil(t, got.FAA)
}

func TestParseVTGEmpty(t *testing.T) {
	s, err := Parse("$GPVTG,,,,,,,,*52")
	require.NoError(t, err)
	got := s.(VTG)
	assert.True(t, got.Valid)
	assert.Nil(t, got.Track)
	assert.Nil(t, got.TrackMagnetic)
	assert.Nil(t, got.Speed)
	assert.Nil(t, got.FAA)
}

func TestParseVTGBadTrackTag(t *testing.T) {
	_, err := Parse("$GPVTG,2.93,X,,M,2.28,N,4.2,K*6A")
	var de *DecodeError
	require.True(t, errors.As(err, &de), "err=%v", err)
	assert.Equal(t, KindField, de.Kind)
	assert.Equal(t, TypeVTG, de.Type)
}

func TestParseGGA(t *testing.T) {
	line := "$GPGGA,234920.000,4832.3918,N,00903.5488,E,1,05,1.7,437.9,M,48.0,M,,0000*51"
	s, err := Parse(line)
	require.NoError(t, err)
	got := s.(GGA)

	assert.Equal(t, clockOf(23, 49, 20, 0), got.Time)
	assert.InDelta(t, 48.53986333333334, *got.Lat, 1e-12)
	assert.InDelta(t, 9.059146666666667, *got.Lon, 1e-12)
	assert.Equal(t, 437.9, *got.Alt)
	assert.Equal(t, QualityFix, *got.Quality)
	assert.Equal(t, 5, *got.Satellites)
	assert.Equal(t, 1.7, *got.HDOP)
	assert.Equal(t, 48.0, *got.Geoidal)
	assert.Nil(t, got.Age)
	assert.Equal(t, 0, *got.StationID)
}

func TestParseGGAShortForm(t *testing.T) {
	s, err := Parse("$GPGGA,234920.000,4832.3918,N,00903.5488,E,1,05,1.7,437.9,M,48.0,M*51")
	require.NoError(t, err)
	got := s.(GGA)
	assert.Equal(t, 437.9, *got.Alt)
	assert.Nil(t, got.Age)
	assert.Nil(t, got.StationID)
}

func TestParseGGABlankDGPS(t *testing.T) {
	s, err := Parse("$GPGGA,123519,4807.038,N,01131.324,E,1,08,0.9,545.4,M,46.9,M, , *42")
	require.NoError(t, err)
	got := s.(GGA)
	assert.InDelta(t, 48.1173, *got.Lat, 1e-12)
	assert.InDelta(t, 11.522066666666667, *got.Lon, 1e-12)
	assert.Nil(t, got.Age)
	assert.Nil(t, got.StationID)
}

func TestParseGGAErrors(t *testing.T) {
	cases := map[string]ErrorKind{
		"$GPGGA,123519,4807.038,N,01131.324,E,9,08,0.9,545.4,M,46.9,M,,*4A": KindField,
		"$GPGGA,123519,4807.038,N,01131.324,E,1,08,0.9,545.4,F,46.9,M,,*49": KindUnit,
		nmeaLine("GPGGA,123519,4807.038,N,01131.324,E,1,08"):                KindLength,
	}
	for line, kind := range cases {
		_, err := Parse(line)
		var de *DecodeError
		require.True(t, errors.As(err, &de), "%s: err=%v", line, err)
		assert.Equal(t, kind, de.Kind, line)
		assert.Equal(t, TypeGGA, de.Type)
		assert.Equal(t, line, de.Raw)
		assert.Contains(t, de.Error(), "GGA")
	}
}

func TestParseGSV(t *testing.T) {
	line := "$GPGSV,3,2,12,16,17,148,46,20,61,307,51,23,36,283,47,25,06,034,00*78"
	s, err := Parse(line)
	require.NoError(t, err)
	got := s.(GSV)

	assert.Equal(t, 2, *got.MsgNumber)
	assert.Equal(t, 3, *got.MsgsTotal)
	assert.Equal(t, 12, *got.SatsInView)
	assert.Nil(t, got.SignalID)
	assert.Equal(t, "GPS", got.System)
	require.Len(t, got.Satellites, 4)
	assert.Equal(t, Satellite{
		PRN:       ptr(16),
		Elevation: ptr(17.0),
		Azimuth:   ptr(148.0),
		SNR:       ptr(46.0),
		Status:    ptr(SatTracking),
		System:    "GPS",
		Key:       "GP16",
	}, got.Satellites[0])
	assert.Equal(t, "GP25", got.Satellites[3].Key)
	assert.Equal(t, 0.0, *got.Satellites[3].SNR)
}

func TestParseGSVInViewAndSignal(t *testing.T) {
	s, err := Parse("$GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00,1*69")
	require.NoError(t, err)
	got := s.(GSV)
	require.Len(t, got.Satellites, 4)
	require.NotNil(t, got.SignalID)
	assert.Equal(t, 1, *got.SignalID)
	assert.Equal(t, "GP3", got.Satellites[0].Key)

	s, err = Parse("$BDGSV,2,1,06,211,18,305,36,205,07,113,,206,04,029,,209,30,046,*67")
	require.NoError(t, err)
	got = s.(GSV)
	assert.Equal(t, "BD", got.System)
	require.Len(t, got.Satellites, 4)
	assert.Equal(t, SatTracking, *got.Satellites[0].Status)
	assert.Equal(t, SatInView, *got.Satellites[1].Status)
	assert.Nil(t, got.Satellites[1].SNR)
	assert.Equal(t, "BD205", got.Satellites[1].Key)
}

func TestParseGSVBadLength(t *testing.T) {
	_, err := Parse(nmeaLine("GPGSV,1,1,01,02,03,004"))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindLength, de.Kind)
}

func TestParseGLL(t *testing.T) {
	s, err := Parse("$GPGLL,4916.45,N,12311.12,W,225444,A,A*5C")
	require.NoError(t, err)
	got := s.(GLL)
	assert.Equal(t, clockOf(22, 54, 44, 0), got.Time)
	assert.Equal(t, StatusActive, *got.Status)
	assert.InDelta(t, 49.274166666666666, *got.Lat, 1e-12)
	assert.InDelta(t, -123.18533333333333, *got.Lon, 1e-12)
	assert.Equal(t, FAAAutonomous, *got.FAA)
}

func TestParseZDA(t *testing.T) {
	s, err := Parse("$GPZDA,201530.00,04,07,2002,00,00*60")
	require.NoError(t, err)
	got := s.(ZDA)
	assert.True(t, time.Date(2002, 7, 4, 20, 15, 30, 0, time.UTC).Equal(*got.Time))
	assert.Equal(t, 0, *got.ZoneHours)
	assert.Equal(t, 0, *got.ZoneMinutes)

	s, err = Parse(nmeaLine("GPZDA,201530.00,04,07,2002"))
	require.NoError(t, err)
	assert.Nil(t, s.(ZDA).ZoneHours)

	_, err = Parse(nmeaLine("GPZDA,201530.00,04,07,2002,00,00,extra"))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindLength, de.Kind)
}

func TestParseGST(t *testing.T) {
	s, err := Parse("$GPGST,172814.0,0.006,0.023,0.020,273.6,0.023,0.020,0.031*6A")
	require.NoError(t, err)
	got := s.(GST)
	assert.Equal(t, clockOf(17, 28, 14, 0), got.Time)
	assert.Equal(t, 0.006, *got.RMS)
	assert.Equal(t, 0.023, *got.EllipseMajor)
	assert.Equal(t, 0.020, *got.EllipseMinor)
	assert.Equal(t, 273.6, *got.EllipseOrientation)
	assert.Equal(t, 0.023, *got.LatitudeError)
	assert.Equal(t, 0.020, *got.LongitudeError)
	assert.Equal(t, 0.031, *got.HeightError)
}

func TestParseHDT(t *testing.T) {
	s, err := Parse("$GPHDT,274.07,T*03")
	require.NoError(t, err)
	got := s.(HDT)
	assert.Equal(t, 274.07, *got.Heading)
	assert.True(t, got.TrueNorth)
}

func TestParseGRS(t *testing.T) {
	s, err := Parse("$GNGRS,220320.0,0,-0.8,-0.2,-0.1,-0.2,0.8,0.6,,,,,,,1,1*67")
	require.NoError(t, err)
	got := s.(GRS)
	assert.Equal(t, 0, *got.Mode)
	assert.Equal(t, []float64{-0.8, -0.2, -0.1, -0.2, 0.8, 0.6}, got.Residuals)
	assert.Equal(t, 1, *got.SystemID)
	assert.Equal(t, 1, *got.SignalID)
}

func TestParseGBS(t *testing.T) {
	s, err := Parse("$GPGBS,015509.00,-0.031,-0.186,0.219,19,0.000,-0.354,6.972,1,0*4C")
	require.NoError(t, err)
	got := s.(GBS)
	assert.Equal(t, clockOf(1, 55, 9, 0), got.Time)
	assert.Equal(t, -0.031, *got.ErrLat)
	assert.Equal(t, -0.186, *got.ErrLon)
	assert.Equal(t, 0.219, *got.ErrAlt)
	assert.Equal(t, 19, *got.FailedSat)
	assert.Equal(t, 0.0, *got.ProbFailedSat)
	assert.Equal(t, -0.354, *got.BiasFailedSat)
	assert.Equal(t, 6.972, *got.StdFailedSat)
	assert.Equal(t, 1, *got.SystemID)
	assert.Equal(t, 0, *got.SignalID)

	_, err = Parse("$GPGBS,125027,23.43,M,13.91,M,34.01,M*07")
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindLength, de.Kind)
}

func TestParseGNS(t *testing.T) {
	s, err := Parse("$GNGNS,014035.00,4332.69262,S,17235.48549,E,RR,13,0.9,25.63,11.24,,,V*0A")
	require.NoError(t, err)
	got := s.(GNS)
	assert.InDelta(t, -43.544877, *got.Lat, 1e-6)
	assert.InDelta(t, 172.591425, *got.Lon, 1e-6)
	assert.Equal(t, "RR", *got.Mode)
	assert.Equal(t, 13, *got.SatsUsed)
	assert.Equal(t, 0.9, *got.HDOP)
	assert.Equal(t, 25.63, *got.Alt)
	assert.Equal(t, 11.24, *got.Sep)
	assert.Nil(t, got.DiffAge)
	assert.Nil(t, got.DiffStation)
	assert.Equal(t, "V", *got.NavStatus)
}

func TestParseFrameErrors(t *testing.T) {
	_, err := Parse("foo")
	assert.True(t, errors.Is(err, ErrNotSentence))
	assert.True(t, IsFrameError(err))

	_, err = Parse("$GPGGA,123519,4807.038,N,01131.324,E,1,08,0.9,545.4,M,46.9,M,,")
	assert.True(t, IsFrameError(err))

	_, err = Parse("$GPXYZ,1,2*4F")
	assert.True(t, errors.Is(err, ErrUnknownType))
	assert.True(t, IsFrameError(err))
	assert.False(t, Supported("XYZ"))
	assert.True(t, Supported(TypeGNS))
	assert.Equal(t, []string{"GBS", "GGA", "GLL", "GNS", "GRS", "GSA", "GST", "GSV", "HDT", "RMC", "TXT", "VTG", "ZDA"}, SupportedTypes())
}

func TestParseChecksumMismatchStillDecodes(t *testing.T) {
	s, err := Parse("$GPHDT,274.07,T*04")
	require.NoError(t, err)
	assert.False(t, s.ChecksumValid())
	assert.Equal(t, 274.07, *s.(HDT).Heading)
}
