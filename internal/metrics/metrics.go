// Package metrics records submission outcomes with Prometheus collectors.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "feedbackform"

// Recorder holds the form's collectors.
type Recorder struct {
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
	blocked     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submission round-trips by result kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time spent waiting for the feedback endpoint.",
			Buckets:   prometheus.DefBuckets,
		}),
		blocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_blocked_total",
			Help:      "Submit attempts stopped before any request was sent.",
		}, []string{"reason"}),
	}
	for _, c := range []prometheus.Collector{r.submissions, r.duration, r.blocked} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return r, nil
}

// ObserveSubmission counts one round-trip of the given kind.
func (r *Recorder) ObserveSubmission(kind string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(kind).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// ObserveBlocked counts a submit attempt that never reached the network.
func (r *Recorder) ObserveBlocked(reason string) {
	if r == nil {
		return
	}
	r.blocked.WithLabelValues(reason).Inc()
}

// WriteText dumps every family gathered from g in the text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
