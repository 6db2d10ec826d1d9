package gps

import (
	"sort"
	"time"

	"github.com/benbjohnson/clock"

	"nmeastream/internal/nmea"
)

// VisibleWindow is how long a satellite stays in State.SatsVisible after
// the last GSV sentence that reported it.
const VisibleWindow = 3000 * time.Millisecond

// State is the running aggregate of every sentence fed to a Parser.
// Fields are nil until a sentence carrying them has been seen, and are
// overwritten (nil included) by each later sentence of that kind.
type State struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`

	Time      *time.Time `json:"time"`
	Lat       *float64   `json:"lat"`
	Lon       *float64   `json:"lon"`
	Alt       *float64   `json:"alt"`
	Speed     *float64   `json:"speed"`
	Track     *float64   `json:"track"`
	Heading   *float64   `json:"heading"`
	TrueNorth *bool      `json:"trueNorth"`

	Fix  *nmea.FixType `json:"fix"`
	PDOP *float64      `json:"pdop"`
	HDOP *float64      `json:"hdop"`
	VDOP *float64      `json:"vdop"`

	SatsActive  []int            `json:"satsActive"`
	SatsVisible []nmea.Satellite `json:"satsVisible"`
}

// aggregator folds decoded sentences into a State. It owns the per-parser
// satellite bookkeeping.
type aggregator struct {
	clock clock.Clock

	// active holds the GSA satellite list per NMEA system id.
	active  map[int][]int
	visible visibilityCache
}

func newAggregator(c clock.Clock) *aggregator {
	return &aggregator{
		clock:   c,
		active:  make(map[int][]int),
		visible: visibilityCache{seen: make(map[string]seenSat)},
	}
}

func (a *aggregator) apply(st *State, s nmea.Sentence) {
	switch v := s.(type) {
	case nmea.RMC:
		st.Time, st.Lat, st.Lon = v.Time, v.Lat, v.Lon
		st.Speed, st.Track = v.Speed, v.Track
	case nmea.GGA:
		st.Time, st.Lat, st.Lon = v.Time, v.Lat, v.Lon
		st.Alt = v.Alt
	case nmea.GLL:
		st.Time, st.Lat, st.Lon = v.Time, v.Lat, v.Lon
	case nmea.GNS:
		st.Time, st.Lat, st.Lon = v.Time, v.Lat, v.Lon
	case nmea.ZDA:
		st.Time = v.Time
	case nmea.HDT:
		trueNorth := v.TrueNorth
		st.Heading, st.TrueNorth = v.Heading, &trueNorth
	case nmea.GSA:
		if v.SystemID != nil {
			a.active[*v.SystemID] = v.Satellites
		}
		st.SatsActive = a.activeSats()
		st.Fix = v.Fix
		st.PDOP, st.HDOP, st.VDOP = v.PDOP, v.HDOP, v.VDOP
	case nmea.GSV:
		now := a.clock.Now()
		for _, sat := range v.Satellites {
			a.visible.see(sat, now)
		}
		st.SatsVisible = a.visible.current(now)
	}
}

// activeSats concatenates the per-system lists in ascending system id order.
func (a *aggregator) activeSats() []int {
	ids := make([]int, 0, len(a.active))
	for id := range a.active {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := []int{}
	for _, id := range ids {
		out = append(out, a.active[id]...)
	}
	return out
}

type seenSat struct {
	at  time.Time
	sat nmea.Satellite
}

// visibilityCache remembers satellites by key in first-seen order.
type visibilityCache struct {
	order []string
	seen  map[string]seenSat
}

func (c *visibilityCache) see(sat nmea.Satellite, now time.Time) {
	if _, ok := c.seen[sat.Key]; !ok {
		c.order = append(c.order, sat.Key)
	}
	c.seen[sat.Key] = seenSat{at: now, sat: sat}
}

// current returns the satellites seen within VisibleWindow of now and drops
// the rest.
func (c *visibilityCache) current(now time.Time) []nmea.Satellite {
	out := make([]nmea.Satellite, 0, len(c.order))
	kept := c.order[:0]
	for _, key := range c.order {
		e := c.seen[key]
		if now.Sub(e.at) < VisibleWindow {
			out = append(out, e.sat)
			kept = append(kept, key)
			continue
		}
		delete(c.seen, key)
	}
	c.order = kept
	return out
}

func (c *visibilityCache) size() int { return len(c.order) }
