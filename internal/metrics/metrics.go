package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry with the task store metrics.
type Collector struct {
	registry  *prometheus.Registry
	mutations *prometheus.CounterVec
	tasks     prometheus.Gauge
}

// New registers the task store metrics under namespace.
// Go runtime and process collectors are added when withRuntime is set.
func New(namespace string, withRuntime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_mutations_total",
			Help:      "Number of completed task store mutations by operation.",
		}, []string{"op"}),
		tasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks",
			Help:      "Number of tasks currently held by the store.",
		}),
	}
	c.registry.MustRegister(c.mutations, c.tasks)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// ObserveMutation counts one completed mutation.
func (c *Collector) ObserveMutation(op string) {
	c.mutations.WithLabelValues(op).Inc()
}

// SetTasks records the current collection size.
func (c *Collector) SetTasks(n int) {
	c.tasks.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
