package portal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	Resolutions     *prometheus.CounterVec
	DuplicateTabs   prometheus.Counter
}

// NewMetrics registers on the given registerer rather than the global one so
// that every Server instance (tests included) owns its own metric set.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_request_duration_seconds",
			Help:    "Duration of portal page requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_flow_resolutions_total",
			Help: "Flow resolver outcomes by destination",
		}, []string{"destination"}),
		DuplicateTabs: factory.NewCounter(prometheus.CounterOpts{
			Name: "portal_duplicate_tabs_blocked_total",
			Help: "Tabs blocked by the single-tab session guard",
		}),
	}
}

func (m *Metrics) ObserveRequest(method, route string, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveResolution(destination string) {
	m.Resolutions.WithLabelValues(destination).Inc()
}
