// Package metrics exports decoder outcomes as Prometheus counters.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	polyjson "github.com/reoring/polyjson"
)

// Observer implements polyjson.Observer with two counter vectors:
//
//	<ns>_resolved_total{base,shape,rule}  objects decoded, by resolved shape
//	<ns>_failures_total{base,code}        aborted decode calls, by issue code
//
// rule is the index of the matching rule, or "fallback".
type Observer struct {
	resolved *prometheus.CounterVec
	failures *prometheus.CounterVec
}

var _ polyjson.Observer = (*Observer)(nil)

// NewObserver creates the counters under namespace (default "polyjson") and
// registers them with reg when reg is not nil.
func NewObserver(reg prometheus.Registerer, namespace string) (*Observer, error) {
	if namespace == "" {
		namespace = "polyjson"
	}
	o := &Observer{
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolved_total",
			Help:      "Objects decoded, by base shape, resolved shape and matching rule.",
		}, []string{"base", "shape", "rule"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Decode calls aborted, by base shape and issue code.",
		}, []string{"base", "code"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{o.resolved, o.failures} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return o, nil
}

// Resolved counts one decoded object.
func (o *Observer) Resolved(base string, shape polyjson.Tag, rule int) {
	label := "fallback"
	if rule >= 0 {
		label = strconv.Itoa(rule)
	}
	o.resolved.WithLabelValues(base, string(shape), label).Inc()
}

// Failed counts one aborted call.
func (o *Observer) Failed(base, code string) {
	o.failures.WithLabelValues(base, code).Inc()
}

// Collectors returns the counters, for callers that register them themselves.
func (o *Observer) Collectors() []prometheus.Collector {
	return []prometheus.Collector{o.resolved, o.failures}
}
