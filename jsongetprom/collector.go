// Package jsongetprom records jsonget invocations as Prometheus metrics.
//
//	c, err := jsongetprom.New(prometheus.DefaultRegisterer, "myapp")
//	if err != nil {
//	    return err
//	}
//	r := jsonget.New(c.Options()...)
package jsongetprom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bjaus/jsonget"
)

const subsystem = "jsonget"

// Collector holds the metrics fed by the registry hooks returned from
// Options.
type Collector struct {
	invocations *prometheus.CounterVec
	rows        *prometheus.CounterVec
	nullRows    *prometheus.CounterVec
	errors      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invocations_total",
				Help:      "Total number of function invocations",
			},
			[]string{"function"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rows_total",
				Help:      "Total number of rows evaluated",
			},
			[]string{"function"},
		),
		nullRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "null_rows_total",
				Help:      "Total number of null output rows by reason",
			},
			[]string{"function", "reason"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "errors_total",
				Help:      "Total number of failed invocations",
			},
			[]string{"function"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoke_duration_seconds",
				Help:      "Duration of function invocations",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us to ~26s
			},
			[]string{"function"},
		),
	}

	for _, m := range c.Collectors() {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Collectors returns every metric of the Collector.
func (c *Collector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.invocations, c.rows, c.nullRows, c.errors, c.duration}
}

// Options returns registry hooks that feed the Collector.
func (c *Collector) Options() []jsonget.Option {
	return []jsonget.Option{
		jsonget.WithOnInvoke(c.onInvoke),
		jsonget.WithOnComplete(c.onComplete),
		jsonget.WithOnError(c.onError),
	}
}

func (c *Collector) onInvoke(ctx context.Context, function string) context.Context {
	c.invocations.WithLabelValues(function).Inc()
	return ctx
}

func (c *Collector) onComplete(_ context.Context, function string, s jsonget.Stats, d time.Duration) {
	c.rows.WithLabelValues(function).Add(float64(s.Rows))
	c.nullRows.WithLabelValues(function, jsonget.Absent.String()).Add(float64(s.Absent))
	c.nullRows.WithLabelValues(function, jsonget.NullInput.String()).Add(float64(s.NullInputs))
	c.duration.WithLabelValues(function).Observe(d.Seconds())
}

func (c *Collector) onError(_ context.Context, function string, _ error, d time.Duration) {
	c.errors.WithLabelValues(function).Inc()
	if d > 0 {
		c.duration.WithLabelValues(function).Observe(d.Seconds())
	}
}
