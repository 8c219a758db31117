// Package metrics exposes evaluation counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder counts evaluated problems, judged carts and throttled judging requests.
// A nil Recorder discards everything.
type Recorder struct {
	problems  *prometheus.CounterVec
	carts     *prometheus.CounterVec
	throttled *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		problems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cartcheck",
			Name:      "problems_evaluated_total",
			Help:      "Number of evaluated problems by outcome.",
		}, []string{"outcome"}),
		carts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cartcheck",
			Name:      "carts_total",
			Help:      "Number of judged carts by load.",
		}, []string{"load"}),
		throttled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cartcheck",
			Name:      "judging_throttled_total",
			Help:      "Number of judging requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
	}
	for _, c := range []prometheus.Collector{r.problems, r.carts, r.throttled} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveProblem records one evaluated problem and, when it succeeded, its cart counts.
func (r *Recorder) ObserveProblem(ok bool, within, over int) {
	if r == nil {
		return
	}
	if !ok {
		r.problems.WithLabelValues(OutcomeError).Inc()
		return
	}
	r.problems.WithLabelValues(OutcomeOK).Inc()
	r.carts.WithLabelValues("within_capacity").Add(float64(within))
	r.carts.WithLabelValues("over_capacity").Add(float64(over))
}

// ObserveThrottled records one judging request on route turned away by the rate limiter.
func (r *Recorder) ObserveThrottled(route string) {
	if r == nil {
		return
	}
	r.throttled.WithLabelValues(route).Inc()
}
