package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventforge"

// Registry is the Prometheus registry for all application metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels on a constant gauge.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// ApplicationsSubmitted counts applications created through the API.
var ApplicationsSubmitted = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Total number of event applications submitted",
	},
)

// ApplicationsReviewed counts approve/reject decisions by outcome.
var ApplicationsReviewed = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_reviewed_total",
		Help:      "Total number of application review decisions",
	},
	[]string{"decision"},
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// SetAppInfo records build metadata.
func SetAppInfo(version, commit, buildDate string) {
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
