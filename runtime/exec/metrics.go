package exec

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the work done by Run.  A nil *Metrics disables counting.
type Metrics struct {
	Rows     prometheus.Counter
	Partials prometheus.Counter
	Tasks    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the counters and registers them with reg.  A nil
// reg creates unregistered counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rows: factory.NewCounter(prometheus.CounterOpts{
			Name: "superagg_rows_total",
			Help: "Total number of raw rows consumed by map tasks.",
		}),
		Partials: factory.NewCounter(prometheus.CounterOpts{
			Name: "superagg_partials_total",
			Help: "Total number of partials emitted by map and combine tasks.",
		}),
		Tasks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "superagg_tasks_total",
			Help: "Total number of tasks run, by stage.",
		}, []string{"stage"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "superagg_task_duration_seconds",
			Help:    "Time spent in each task, by stage.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"stage"}),
	}
}

func (m *Metrics) rows(n int) {
	if m != nil {
		m.Rows.Add(float64(n))
	}
}

func (m *Metrics) partials(n int) {
	if m != nil {
		m.Partials.Add(float64(n))
	}
}

func (m *Metrics) task(stage string) {
	if m != nil {
		m.Tasks.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) observe(stage string, d time.Duration) {
	if m != nil {
		m.Duration.WithLabelValues(stage).Observe(d.Seconds())
	}
}
