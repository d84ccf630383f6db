// Package telemetry records how long client operations take.
package telemetry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const metricName = "daybook_operation_duration_seconds"

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Sample is one recorded operation.
type Sample struct {
	Operation string
	Outcome   string
	Duration  time.Duration
	At        time.Time
}

// OpStats aggregates all samples for one operation.
type OpStats struct {
	Operation string
	Count     uint64
	Errors    uint64
	Mean      time.Duration
}

// Monitor owns a private Prometheus registry. Construct one per process and
// pass it to whatever needs timing; there is no package-level instance.
type Monitor struct {
	clock    clockwork.Clock
	registry *prometheus.Registry
	duration *prometheus.HistogramVec

	mu   sync.Mutex
	last Sample
	seen bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(m *Monitor) {
		if c != nil {
			m.clock = c
		}
	}
}

// NewMonitor builds a Monitor with its own registry.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		clock:    clockwork.NewRealClock(),
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricName,
			Help:    "Duration of client operations such as API calls.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "outcome"}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.registry.MustRegister(m.duration)
	return m
}

// Registry exposes the underlying registry.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Track runs fn and records its duration under op. The error from fn is
// returned unchanged.
func (m *Monitor) Track(op string, fn func() error) error {
	start := m.clock.Now()
	err := fn()
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.Observe(op, outcome, m.clock.Since(start))
	return err
}

// Observe records a duration measured elsewhere.
func (m *Monitor) Observe(op, outcome string, d time.Duration) {
	m.duration.WithLabelValues(op, outcome).Observe(d.Seconds())

	m.mu.Lock()
	m.last = Sample{Operation: op, Outcome: outcome, Duration: d, At: m.clock.Now()}
	m.seen = true
	m.mu.Unlock()
}

// Last returns the most recent sample.
func (m *Monitor) Last() (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.seen
}

// Summary aggregates the histogram by operation, sorted by name.
func (m *Monitor) Summary() ([]OpStats, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	type acc struct {
		count  uint64
		errors uint64
		sum    float64
	}
	byOp := make(map[string]*acc)
	for _, fam := range families {
		if fam.GetName() != metricName {
			continue
		}
		for _, metric := range fam.GetMetric() {
			op, outcome := labelValues(metric)
			a := byOp[op]
			if a == nil {
				a = &acc{}
				byOp[op] = a
			}
			h := metric.GetHistogram()
			a.count += h.GetSampleCount()
			a.sum += h.GetSampleSum()
			if outcome == OutcomeError {
				a.errors += h.GetSampleCount()
			}
		}
	}

	out := make([]OpStats, 0, len(byOp))
	for op, a := range byOp {
		st := OpStats{Operation: op, Count: a.count, Errors: a.errors}
		if a.count > 0 {
			st.Mean = time.Duration(a.sum / float64(a.count) * float64(time.Second))
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out, nil
}

func labelValues(metric *dto.Metric) (op, outcome string) {
	for _, lp := range metric.GetLabel() {
		switch lp.GetName() {
		case "operation":
			op = lp.GetValue()
		case "outcome":
			outcome = lp.GetValue()
		}
	}
	return op, outcome
}
