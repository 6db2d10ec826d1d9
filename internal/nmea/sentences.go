package nmea

import "time"

// Sentence type tags.
const (
	TypeGGA = "GGA"
	TypeGSA = "GSA"
	TypeRMC = "RMC"
	TypeVTG = "VTG"
	TypeGSV = "GSV"
	TypeGLL = "GLL"
	TypeZDA = "ZDA"
	TypeGST = "GST"
	TypeHDT = "HDT"
	TypeGRS = "GRS"
	TypeGBS = "GBS"
	TypeGNS = "GNS"
	TypeTXT = "TXT"
)

// Sentence is a decoded record. The concrete type is one of the structs in
// this file; switch on it to read the fields.
type Sentence interface {
	DataType() string
	TalkerID() string
	// String returns the raw line the sentence was decoded from.
	String() string
	ChecksumValid() bool
}

// BaseSentence carries what every decoded record has.
type BaseSentence struct {
	Type   string `json:"type"`
	Talker string `json:"talker"`
	Raw    string `json:"raw"`
	Valid  bool   `json:"valid"`
}

func newBase(f Frame) BaseSentence {
	return BaseSentence{Type: f.Type, Talker: f.Talker, Raw: f.Raw, Valid: f.Valid}
}

func (b BaseSentence) DataType() string    { return b.Type }
func (b BaseSentence) TalkerID() string    { return b.Talker }
func (b BaseSentence) String() string      { return b.Raw }
func (b BaseSentence) ChecksumValid() bool { return b.Valid }

// GGA is Global Positioning System Fix Data.
type GGA struct {
	BaseSentence
	Time       *time.Time  `json:"time"`
	Lat        *float64    `json:"lat"`
	Lon        *float64    `json:"lon"`
	Alt        *float64    `json:"alt"`
	Quality    *FixQuality `json:"quality"`
	Satellites *int        `json:"satellites"`
	HDOP       *float64    `json:"hdop"`
	Geoidal    *float64    `json:"geoidal"`
	Age        *float64    `json:"age"`
	StationID  *int        `json:"stationID"`
}

// GSA is GNSS DOP and active satellites.
type GSA struct {
	BaseSentence
	Mode       *SelectionMode `json:"mode"`
	Fix        *FixType       `json:"fix"`
	Satellites []int          `json:"satellites"`
	PDOP       *float64       `json:"pdop"`
	HDOP       *float64       `json:"hdop"`
	VDOP       *float64       `json:"vdop"`
	SystemID   *int           `json:"systemId"`
	System     *string        `json:"system"`
}

// RMC is Recommended Minimum Specific GNSS Data.
type RMC struct {
	BaseSentence
	Time *time.Time `json:"time"`
	// Status is A (active) or V (void).
	Status *Status  `json:"status"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	// Speed over ground in km/h.
	Speed *float64 `json:"speed"`
	// Track made good, degrees true.
	Track     *float64 `json:"track"`
	Variation *float64 `json:"variation"`
	FAA       *FAAMode `json:"faa"`
	NavStatus *string  `json:"navStatus"`
}

// VTG is Track Made Good and Ground Speed.
type VTG struct {
	BaseSentence
	Track         *float64 `json:"track"`
	TrackMagnetic *float64 `json:"trackMagnetic"`
	// Speed over ground in km/h.
	Speed *float64 `json:"speed"`
	FAA   *FAAMode `json:"faa"`
}

// Satellite is one space vehicle reported by GSV.
type Satellite struct {
	PRN       *int     `json:"prn"`
	Elevation *float64 `json:"elevation"`
	Azimuth   *float64 `json:"azimuth"`
	SNR       *float64 `json:"snr"`
	// Status is "tracking" when an SNR is reported, "in view" when only
	// the PRN is known, nil otherwise.
	Status *string `json:"status"`
	System string  `json:"system"`
	// Key identifies the satellite across sentences (talker + PRN).
	Key string `json:"key"`
}

// GSV is GNSS Satellites in View.
type GSV struct {
	BaseSentence
	MsgNumber  *int        `json:"msgNumber"`
	MsgsTotal  *int        `json:"msgsTotal"`
	SatsInView *int        `json:"satsInView"`
	Satellites []Satellite `json:"satellites"`
	SignalID   *int        `json:"signalId"`
	System     string      `json:"system"`
}

// GLL is Geographic Position, Latitude/Longitude.
type GLL struct {
	BaseSentence
	Time   *time.Time `json:"time"`
	Status *Status    `json:"status"`
	Lat    *float64   `json:"lat"`
	Lon    *float64   `json:"lon"`
	FAA    *FAAMode   `json:"faa"`
}

// ZDA is Time and Date.
type ZDA struct {
	BaseSentence
	Time        *time.Time `json:"time"`
	ZoneHours   *int       `json:"zoneHours"`
	ZoneMinutes *int       `json:"zoneMinutes"`
}

// GST is GNSS Pseudorange Error Statistics.
type GST struct {
	BaseSentence
	Time               *time.Time `json:"time"`
	RMS                *float64   `json:"rms"`
	EllipseMajor       *float64   `json:"ellipseMajor"`
	EllipseMinor       *float64   `json:"ellipseMinor"`
	EllipseOrientation *float64   `json:"ellipseOrientation"`
	LatitudeError      *float64   `json:"latitudeError"`
	LongitudeError     *float64   `json:"longitudeError"`
	HeightError        *float64   `json:"heightError"`
}

// HDT is Heading, True.
type HDT struct {
	BaseSentence
	Heading   *float64 `json:"heading"`
	TrueNorth bool     `json:"trueNorth"`
}

// GRS is GNSS Range Residuals.
type GRS struct {
	BaseSentence
	Time *time.Time `json:"time"`
	Mode *int       `json:"mode"`
	// Residuals holds the non-empty residual fields in order, in meters.
	Residuals []float64 `json:"res"`
	SystemID  *int      `json:"systemId"`
	SignalID  *int      `json:"signalId"`
}

// GBS is GNSS Satellite Fault Detection.
type GBS struct {
	BaseSentence
	Time          *time.Time `json:"time"`
	ErrLat        *float64   `json:"errLat"`
	ErrLon        *float64   `json:"errLon"`
	ErrAlt        *float64   `json:"errAlt"`
	FailedSat     *int       `json:"failedSat"`
	ProbFailedSat *float64   `json:"probFailedSat"`
	BiasFailedSat *float64   `json:"biasFailedSat"`
	StdFailedSat  *float64   `json:"stdFailedSat"`
	SystemID      *int       `json:"systemId"`
	SignalID      *int       `json:"signalId"`
}

// GNS is GNSS Fix Data.
type GNS struct {
	BaseSentence
	Time        *time.Time `json:"time"`
	Lat         *float64   `json:"lat"`
	Lon         *float64   `json:"lon"`
	Mode        *string    `json:"mode"`
	SatsUsed    *int       `json:"satsUsed"`
	HDOP        *float64   `json:"hdop"`
	Alt         *float64   `json:"alt"`
	Sep         *float64   `json:"sep"`
	DiffAge     *float64   `json:"diffAge"`
	DiffStation *int       `json:"diffStation"`
	NavStatus   *string    `json:"navStatus"`
}

// TXT is a text transmission, possibly split over several sentences.
type TXT struct {
	BaseSentence
	SentenceAmount *int   `json:"sentenceAmount"`
	SentenceNumber *int   `json:"sentenceNumber"`
	TextID         string `json:"textId"`
	// Message is set once the last part has arrived.
	Message     *string  `json:"message"`
	Completed   bool     `json:"completed"`
	RawMessages []string `json:"rawMessages"`
}
