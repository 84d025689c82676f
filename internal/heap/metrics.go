package heap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts minor GC job activity. Collections is labeled by space and
// reason and is meant to be incremented by the Heap implementation.
type Metrics struct {
	TasksScheduled prometheus.Counter
	TasksCanceled  prometheus.Counter
	TasksRun       prometheus.Counter
	TaskBailouts   prometheus.Counter
	Collections    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TasksScheduled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "minorgc",
			Name:      "tasks_scheduled_total",
			Help:      "Minor GC tasks posted to the foreground runner.",
		}),
		TasksCanceled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "minorgc",
			Name:      "tasks_canceled_total",
			Help:      "Minor GC tasks aborted before they started.",
		}),
		TasksRun: f.NewCounter(prometheus.CounterOpts{
			Namespace: "minorgc",
			Name:      "tasks_run_total",
			Help:      "Minor GC tasks that started running.",
		}),
		TaskBailouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "minorgc",
			Name:      "task_bailouts_total",
			Help:      "Minor GC tasks that skipped collection because major marking was active.",
		}),
		Collections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minorgc",
			Name:      "collections_total",
			Help:      "Garbage collections performed, by space and reason.",
		}, []string{"space", "reason"}),
	}
}
