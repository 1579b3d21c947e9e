package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// ProposalsPurged counts closed proposals removed by the retention sweep.
	ProposalsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "proposals_purged_total",
			Help: "Total number of closed proposals purged by retention.",
		},
	)

	// RetentionSweeps counts sweep runs by result ("ok" or "error").
	RetentionSweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_sweeps_total",
			Help: "Total number of retention sweep runs.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(ProposalsPurged, RetentionSweeps)
}
