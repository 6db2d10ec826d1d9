// Package gps turns a stream of NMEA-0183 text into a running receiver
// state.
//
// Parser is the synchronous core: Update decodes one line, Feed and Write
// reassemble lines from arbitrary chunks, and On/Off register handlers for
// decoded sentences. Service wraps a Parser with a serial, gpsd, TCP or
// replay-file source, Prometheus metrics and a channel fan-out.
package gps
