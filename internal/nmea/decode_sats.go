package nmea

import "strconv"

// Satellite visibility labels.
const (
	SatTracking = "tracking"
	SatInView   = "in view"
)

// $--GSA,a,x,p1,...,p12,pdop,hdop,vdop[,sys]*hh
func decodeGSA(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 19, 20) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := GSA{
		BaseSentence: newBase(f),
		Mode:         readEnum(r, 1, ParseSelectionMode),
		Fix:          readEnum(r, 2, ParseFixType),
		Satellites:   make([]int, 0, 12),
		PDOP:         r.number(15),
		HDOP:         r.number(16),
		VDOP:         r.number(17),
	}
	// A malformed PRN is treated like an empty slot, as ParseInt does.
	for i := 3; i < 15; i++ {
		if prn := ParseInt(r.word(i)); prn != nil {
			s.Satellites = append(s.Satellites, *prn)
		}
	}
	if len(f.Fields) == 20 {
		id, name, err := ParseSystemID(r.word(18))
		r.setErr(err)
		s.SystemID, s.System = id, name
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// $--GSV,total,num,inview{,prn,elev,az,snr}[,signal]*hh
//
// The word count decides the layout: count%4 == 1 is the classic form and
// count%4 == 2 carries the NMEA 4.10 signal id before the checksum.
func decodeGSV(_ *Decoder, f Frame) (Sentence, error) {
	n := len(f.Fields)
	if n%4 == 0 || n < 5 {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	system := TalkerSystem(f.Talker)
	s := GSV{
		BaseSentence: newBase(f),
		MsgsTotal:    r.integer(1),
		MsgNumber:    r.integer(2),
		SatsInView:   r.integer(3),
		Satellites:   make([]Satellite, 0, 4),
		System:       system,
	}
	for i := 4; i < n-3; i += 4 {
		sat := Satellite{
			PRN:       r.integer(i),
			Elevation: r.number(i + 1),
			Azimuth:   r.number(i + 2),
			SNR:       r.number(i + 3),
			System:    system,
			Key:       f.Talker,
		}
		if sat.PRN != nil {
			sat.Key += strconv.Itoa(*sat.PRN)
			status := SatInView
			if sat.SNR != nil {
				status = SatTracking
			}
			sat.Status = &status
		}
		s.Satellites = append(s.Satellites, sat)
	}
	if n%4 == 2 {
		s.SignalID = r.integer(n - 2)
	}
	return s, nil
}

// $--GST,hhmmss.ss,rms,smaj,smin,orient,lat,lon,alt*hh
func decodeGST(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 10) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	return GST{
		BaseSentence:       newBase(f),
		Time:               r.clock(1),
		RMS:                r.number(2),
		EllipseMajor:       r.number(3),
		EllipseMinor:       r.number(4),
		EllipseOrientation: r.number(5),
		LatitudeError:      r.number(6),
		LongitudeError:     r.number(7),
		HeightError:        r.number(8),
	}, nil
}

// $--GRS,hhmmss.ss,mode,r1,...,r12,sys,signal*hh
func decodeGRS(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 18) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := GRS{
		BaseSentence: newBase(f),
		Time:         r.clock(1),
		Mode:         r.integer(2),
		Residuals:    make([]float64, 0, 12),
		SystemID:     r.integer(15),
		SignalID:     r.integer(16),
	}
	for i := 3; i <= 14; i++ {
		if v := r.number(i); v != nil {
			s.Residuals = append(s.Residuals, *v)
		}
	}
	return s, nil
}

// $--GBS,hhmmss.ss,elat,elon,ealt,prn,prob,bias,std[,sys,signal]*hh
func decodeGBS(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 10, 12) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := GBS{
		BaseSentence:  newBase(f),
		Time:          r.clock(1),
		ErrLat:        r.number(2),
		ErrLon:        r.number(3),
		ErrAlt:        r.number(4),
		FailedSat:     r.integer(5),
		ProbFailedSat: r.number(6),
		BiasFailedSat: r.number(7),
		StdFailedSat:  r.number(8),
	}
	if len(f.Fields) == 12 {
		s.SystemID = r.integer(9)
		s.SignalID = r.integer(10)
	}
	return s, nil
}
