// Package nmea decodes NMEA-0183 sentences into typed records.
//
// Decoding is positional and strict about word counts: each sentence type
// accepts only the word counts observed across NMEA revisions, and a
// mismatch is reported as a *DecodeError before any field is read. Empty
// fields decode to nil. A checksum mismatch is not an error; the record is
// returned with ChecksumValid() == false.
package nmea
