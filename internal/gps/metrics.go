package gps

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"nmeastream/internal/nmea"
)

// Metrics are the Prometheus collectors updated by a Service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	sentences   *prometheus.CounterVec
	errors      *prometheus.CounterVec
	checksum    prometheus.Counter
	satsVisible prometheus.Gauge
	satsActive  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sentences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nmeastream_sentences_total",
				Help: "decoded NMEA sentences",
			},
			[]string{"type", "talker"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nmeastream_decode_errors_total",
				Help: "lines that could not be decoded",
			},
			[]string{"kind"},
		),
		checksum: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nmeastream_checksum_failures_total",
			Help: "decoded sentences whose checksum did not match",
		}),
		satsVisible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nmeastream_satellites_visible",
			Help: "satellites reported by GSV within the visibility window",
		}),
		satsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nmeastream_satellites_active",
			Help: "satellites used in the solution according to GSA",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.sentences, m.errors, m.checksum, m.satsVisible, m.satsActive} {
		if err := reg.Register(c); err != nil {
			return nil, pkgerrors.Wrap(err, "register gps metrics")
		}
	}
	return m, nil
}

func (m *Metrics) sentence(s nmea.Sentence) {
	if m == nil {
		return
	}
	m.sentences.WithLabelValues(s.DataType(), s.TalkerID()).Inc()
	if !s.ChecksumValid() {
		m.checksum.Inc()
	}
}

// decodeError counts a failed Update. err is nil for lines that were not
// sentences or had an unknown type.
func (m *Metrics) decodeError(err error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(errorKind(err)).Inc()
}

func (m *Metrics) state(st State) {
	if m == nil {
		return
	}
	m.satsVisible.Set(float64(len(st.SatsVisible)))
	m.satsActive.Set(float64(len(st.SatsActive)))
}

func errorKind(err error) string {
	var de *nmea.DecodeError
	if errors.As(err, &de) {
		return de.Kind.String()
	}
	return "frame"
}
