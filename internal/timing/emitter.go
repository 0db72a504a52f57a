package timing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Emitter publishes named timed spans as structured log lines and
// Prometheus histogram observations
type Emitter struct {
	durations *prometheus.HistogramVec
}

// NewEmitter creates an Emitter and registers its collector
func NewEmitter(reg prometheus.Registerer) *Emitter {
	e := &Emitter{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vitalview",
			Name:      "span_duration_milliseconds",
			Help:      "Durations of sub-timing breakdown spans.",
			Buckets:   []float64{1, 4, 16, 40, 100, 200, 500, 1000, 2500},
		}, []string{"span"}),
	}

	if reg != nil {
		reg.MustRegister(e.durations)
	}

	return e
}

// Emit records each span
func (e *Emitter) Emit(spans ...Span) {
	for _, span := range spans {
		e.durations.WithLabelValues(span.Name).Observe(span.Duration())
		logrus.Debugf("Span %s: %.2fms (%.2f -> %.2f)", span.Name, span.Duration(), span.Start, span.End)
	}
}
