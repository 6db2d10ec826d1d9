// Package pps counts pulse-per-second edges from a GNSS receiver wired to a
// GPIO line.
package pps

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Snapshot is the JSON view of a Monitor.
type Snapshot struct {
	Pin          int     `json:"pin"`
	Pulses       uint64  `json:"pulses"`
	LastPulseUTC string  `json:"last_pulse_utc,omitempty"`
	IntervalMs   float64 `json:"interval_ms,omitempty"`
	// Locked is true while pulses arrive within 100 ms of one second apart.
	Locked bool `json:"locked"`
}

// Monitor records rising edges on one BCM GPIO pin.
type Monitor struct {
	pin   int
	clock clock.Clock
	log   *logrus.Entry

	mu       sync.Mutex
	line     io.Closer
	pulses   uint64
	last     time.Time
	interval time.Duration
}

func New(pin int, clk clock.Clock) *Monitor {
	if clk == nil {
		clk = clock.New()
	}
	return &Monitor{
		pin:   pin,
		clock: clk,
		log:   logrus.WithFields(logrus.Fields{"component": "pps", "pin": pin}),
	}
}

func (m *Monitor) Start() error {
	if m.pin <= 0 {
		return fmt.Errorf("pps: invalid gpio pin %d", m.pin)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.line != nil {
		return nil
	}
	line, err := openLineFn(m.pin, m.pulse)
	if err != nil {
		return errors.Wrap(err, "pps open")
	}
	m.line = line
	m.log.Info("pps enabled")
	return nil
}

func (m *Monitor) Close() error {
	m.mu.Lock()
	line := m.line
	m.line = nil
	m.mu.Unlock()
	if line == nil {
		return nil
	}
	return line.Close()
}

func (m *Monitor) pulse() {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.last.IsZero() {
		m.interval = now.Sub(m.last)
	}
	m.last = now
	m.pulses++
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := Snapshot{Pin: m.pin, Pulses: m.pulses}
	if m.last.IsZero() {
		return out
	}
	out.LastPulseUTC = m.last.UTC().Format(time.RFC3339Nano)
	if m.interval > 0 {
		out.IntervalMs = float64(m.interval) / float64(time.Millisecond)
	}
	drift := m.interval - time.Second
	if drift < 0 {
		drift = -drift
	}
	out.Locked = m.interval > 0 && drift <= 100*time.Millisecond && m.clock.Since(m.last) < 2*time.Second
	return out
}
