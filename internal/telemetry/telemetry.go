package telemetry

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Tracker holds and manages agent telemetry: per-metric observation
// counts for the periodic progress log, plus Prometheus collectors
// for scraping
type Tracker struct {
	mu           sync.Mutex
	observations map[string]int
	broadcasts   int
	startTime    time.Time

	observationsTotal *prometheus.CounterVec
	broadcastsTotal   *prometheus.CounterVec
	metricValue       *prometheus.GaugeVec
	badgeVerdict      *prometheus.GaugeVec
}

// NewTracker creates a tracker and registers its collectors
func NewTracker(reg prometheus.Registerer) *Tracker {
	t := &Tracker{
		observations: make(map[string]int),
		startTime:    time.Now(),
		observationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalview",
			Name:      "observations_total",
			Help:      "Metric observations processed by the aggregator.",
		}, []string{"metric"}),
		broadcastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalview",
			Name:      "broadcasts_total",
			Help:      "Scoreboard updates sent to the badge channel.",
		}, []string{"verdict"}),
		metricValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vitalview",
			Name:      "metric_value",
			Help:      "Latest observed value per metric, in its native unit.",
		}, []string{"metric"}),
		badgeVerdict: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vitalview",
			Name:      "badge_good",
			Help:      "Per-tab badge verdict: 1 when all thresholds pass.",
		}, []string{"tab"}),
	}

	if reg != nil {
		reg.MustRegister(t.observationsTotal, t.broadcastsTotal, t.metricValue, t.badgeVerdict)
	}

	return t
}

// ObservationProcessed records one aggregated observation
func (t *Tracker) ObservationProcessed(metric string, value float64) {
	t.mu.Lock()
	t.observations[metric]++
	t.mu.Unlock()

	t.observationsTotal.WithLabelValues(metric).Inc()
	t.metricValue.WithLabelValues(metric).Set(value)
}

// BroadcastSent records one badge channel update
func (t *Tracker) BroadcastSent(verdict string) {
	t.mu.Lock()
	t.broadcasts++
	t.mu.Unlock()

	t.broadcastsTotal.WithLabelValues(verdict).Inc()
}

// BadgeUpdated records the verdict the responder holds for a tab
func (t *Tracker) BadgeUpdated(tabID string, good bool) {
	v := 0.0
	if good {
		v = 1.0
	}
	t.badgeVerdict.WithLabelValues(tabID).Set(v)
}

// LogProgress prints current telemetry to console (for periodic updates)
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Observations: %d lcp, %d cls, %d fid, %d inp | Broadcasts: %d | Uptime: %s",
		t.observations["lcp"],
		t.observations["cls"],
		t.observations["fid"],
		t.observations["inp"],
		t.broadcasts,
		time.Since(t.startTime).Round(time.Second),
	)
}

// StartServer serves the /metrics endpoint in the background
func StartServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Warnf("Telemetry server stopped: %v", err)
		}
	}()

	return srv
}
