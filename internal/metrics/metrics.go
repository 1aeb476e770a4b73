// Package metrics counts conformance outcomes with Prometheus collectors
// and writes them in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/ptcheck/pkg/conform"
)

const namespace = "ptcheck"

// Outcome label values.
const (
	LabelPass  = "pass"
	LabelFail  = "fail"
	LabelSmoke = "smoke"
)

// Collector is a conform.Observer backed by a private registry.
type Collector struct {
	reg        *prometheus.Registry
	checks     *prometheus.CounterVec
	degenerate *prometheus.CounterVec
	lastRun    *prometheus.GaugeVec
}

var _ conform.Observer = (*Collector)(nil)

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Check invocations by check name and outcome.",
		}, []string{"check", "outcome"}),
		degenerate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_inputs_total",
			Help:      "Checks that saw a zero spatial norm for their input.",
		}, []string{"check"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_pass",
			Help:      "1 if the most recent aggregate run passed, else 0.",
		}, []string{"app"}),
	}
	c.reg.MustRegister(c.checks, c.degenerate, c.lastRun)
	return c
}

// Observe implements conform.Observer.
func (c *Collector) Observe(o conform.Outcome) {
	c.checks.WithLabelValues(o.Check, outcomeLabel(o)).Inc()
	if o.Degenerate {
		c.degenerate.WithLabelValues(o.Check).Inc()
	}
}

func outcomeLabel(o conform.Outcome) string {
	switch {
	case !o.Automatic:
		return LabelSmoke
	case o.Pass:
		return LabelPass
	default:
		return LabelFail
	}
}

// RunFinished records the verdict of an aggregate run.
func (c *Collector) RunFinished(app string, pass bool) {
	v := 0.0
	if pass {
		v = 1
	}
	c.lastRun.WithLabelValues(app).Set(v)
}

// WriteTextfile atomically writes the metrics to path.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
