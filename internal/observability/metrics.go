package observability

import (
	"io"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metrics keeps process-local counters and timers in a go-metrics registry.
type Metrics struct {
	registry metrics.Registry
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{
		registry: metrics.NewRegistry(),
	}
}

// Inc increments the named counter by one.
func (m *Metrics) Inc(name string) {
	metrics.GetOrRegisterCounter(name, m.registry).Inc(1)
}

// Count returns the current value of the named counter.
func (m *Metrics) Count(name string) int64 {
	counter, ok := m.registry.Get(name).(metrics.Counter)
	if !ok {
		return 0
	}
	return counter.Count()
}

// ObserveDuration records d in the named timer.
func (m *Metrics) ObserveDuration(name string, d time.Duration) {
	metrics.GetOrRegisterTimer(name, m.registry).Update(d)
}

// TimerCount returns how many observations the named timer holds.
func (m *Metrics) TimerCount(name string) int64 {
	timer, ok := m.registry.Get(name).(metrics.Timer)
	if !ok {
		return 0
	}
	return timer.Count()
}

// WriteJSON writes a snapshot of every metric as a JSON object.
func (m *Metrics) WriteJSON(w io.Writer) {
	metrics.WriteJSONOnce(m.registry, w)
}
