package nmea

import "fmt"

// $--GGA,hhmmss.ss,llll.ll,a,yyyyy.yy,a,q,ss,h.h,a.a,M,g.g,M,age,stn*hh
// The short form (14 words) drops the DGPS age and station words.
func decodeGGA(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 14, 16) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := GGA{
		BaseSentence: newBase(f),
		Time:         r.clock(1),
		Lat:          r.coord(2, 3),
		Lon:          r.coord(4, 5),
		Quality:      readEnum(r, 6, ParseQuality),
		Satellites:   r.integer(7),
		HDOP:         r.number(8),
		Alt:          r.distance(9, 10),
		Geoidal:      r.distance(11, 12),
	}
	if len(f.Fields) == 16 {
		s.Age = r.number(13)
		s.StationID = r.integer(14)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// $--RMC,hhmmss.ss,A,llll.ll,a,yyyyy.yy,a,x.x,x.x,ddmmyy,x.x,a[,m[,s]]*hh
func decodeRMC(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 13, 14, 15) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := RMC{
		BaseSentence: newBase(f),
		Time:         ParseTime(r.word(1), r.word(9)),
		Status:       readEnum(r, 2, ParseStatus),
		Lat:          r.coord(3, 4),
		Lon:          r.coord(5, 6),
		Speed:        r.knots(7),
		Track:        r.number(8),
		Variation:    ParseVariation(r.word(10), r.word(11)),
	}
	if len(f.Fields) > 13 {
		s.FAA = readEnum(r, 12, ParseFAA)
	}
	if len(f.Fields) > 14 {
		s.NavStatus = r.text(13)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// $--VTG,x.x,T,x.x,M,x.x,N,x.x,K[,m]*hh
func decodeVTG(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 10, 11) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := VTG{BaseSentence: newBase(f)}

	// Some receivers send a VTG with every field empty before they have a fix.
	if r.word(2) == "" && r.word(6) == "" && r.word(8) == "" {
		return s, nil
	}
	if r.word(2) != "T" {
		r.setErr(fmt.Errorf("%w: VTG track mode %q", ErrInvalidField, r.word(2)))
	}
	if r.word(6) != "N" || r.word(8) != "K" {
		r.setErr(fmt.Errorf("%w: VTG speed tag %q/%q", ErrInvalidField, r.word(6), r.word(8)))
	}

	s.Track = r.number(1)
	s.TrackMagnetic = r.number(3)
	s.Speed = r.knots(5)
	if len(f.Fields) == 11 {
		s.FAA = readEnum(r, 9, ParseFAA)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// $--GLL,llll.ll,a,yyyyy.yy,a,hhmmss.ss,A[,m]*hh
func decodeGLL(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 8, 9) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := GLL{
		BaseSentence: newBase(f),
		Time:         r.clock(5),
		Status:       readEnum(r, 6, ParseStatus),
		Lat:          r.coord(1, 2),
		Lon:          r.coord(3, 4),
	}
	if len(f.Fields) == 9 {
		s.FAA = readEnum(r, 7, ParseFAA)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// $--GNS,hhmmss.ss,llll.ll,a,yyyyy.yy,a,mode,ss,h.h,a.a,g.g,age,stn[,s]*hh
func decodeGNS(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 14, 15) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := GNS{
		BaseSentence: newBase(f),
		Time:         r.clock(1),
		Lat:          r.coord(2, 3),
		Lon:          r.coord(4, 5),
		Mode:         r.text(6),
		SatsUsed:     r.integer(7),
		HDOP:         r.number(8),
		Alt:          r.number(9),
		Sep:          r.number(10),
		DiffAge:      r.number(11),
		DiffStation:  r.integer(12),
	}
	if len(f.Fields) == 15 {
		s.NavStatus = r.text(13)
	}
	return s, nil
}

// $--ZDA,hhmmss.ss,dd,mm,yyyy[,zh[,zm]]*hh
// Receivers disagree on the trailing zone words, so 6 to 8 words are taken.
func decodeZDA(_ *Decoder, f Frame) (Sentence, error) {
	n := len(f.Fields)
	if n < 6 || n > 8 {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	s := ZDA{
		BaseSentence: newBase(f),
		Time:         ParseTime(r.word(1), r.word(2)+r.word(3)+r.word(4)),
	}
	if n >= 7 {
		s.ZoneHours = r.integer(5)
	}
	if n == 8 {
		s.ZoneMinutes = r.integer(6)
	}
	return s, nil
}

// $--HDT,x.x,T*hh
func decodeHDT(_ *Decoder, f Frame) (Sentence, error) {
	if !lengthIn(f, 4) {
		return nil, lengthError(f)
	}
	r := newFieldReader(f)
	return HDT{
		BaseSentence: newBase(f),
		Heading:      r.number(1),
		TrueNorth:    r.word(2) == "T",
	}, nil
}
