package web

import (
	"sync/atomic"
	"time"
)

// Status tracks process-level facts that are not part of the receiver
// state: where sentences come from and how many were forwarded over UDP.
type Status struct {
	startUnixNano   int64
	forwarded       uint64
	lastForwardNano int64
	source          atomic.Value // string
	udpDest         atomic.Value // string
	recordPath      atomic.Value // string
}

func NewStatus() *Status {
	s := &Status{}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.source.Store("")
	s.udpDest.Store("")
	s.recordPath.Store("")
	return s
}

// SetStatic records configuration values. Empty strings leave the current
// value unchanged.
func (s *Status) SetStatic(source, udpDest, recordPath string) {
	if source != "" {
		s.source.Store(source)
	}
	if udpDest != "" {
		s.udpDest.Store(udpDest)
	}
	if recordPath != "" {
		s.recordPath.Store(recordPath)
	}
}

func (s *Status) MarkForwarded(nowUTC time.Time, n int) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	atomic.StoreInt64(&s.lastForwardNano, nowUTC.UnixNano())
	if n > 0 {
		atomic.AddUint64(&s.forwarded, uint64(n))
	}
}

type StatusSnapshot struct {
	Service        string `json:"service"`
	NowUTC         string `json:"now_utc"`
	UptimeSec      int64  `json:"uptime_sec"`
	Source         string `json:"source"`
	UDPDest        string `json:"udp_dest,omitempty"`
	RecordPath     string `json:"record_path,omitempty"`
	ForwardedTotal uint64 `json:"forwarded_total"`
	LastForwardUTC string `json:"last_forward_utc,omitempty"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	last := atomic.LoadInt64(&s.lastForwardNano)

	snap := StatusSnapshot{
		Service:        "nmeastream",
		NowUTC:         nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec:      int64(nowUTC.Sub(start).Seconds()),
		Source:         s.source.Load().(string),
		UDPDest:        s.udpDest.Load().(string),
		RecordPath:     s.recordPath.Load().(string),
		ForwardedTotal: atomic.LoadUint64(&s.forwarded),
	}
	if last != 0 {
		snap.LastForwardUTC = time.Unix(0, last).UTC().Format(time.RFC3339Nano)
	}
	return snap
}
