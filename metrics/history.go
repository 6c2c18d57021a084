package metrics

import (
	"sort"
	"sync"
)

// History records per-epoch evaluation series, keyed by metric name.
// Callback factories append to it and plotting consumes it.
type History struct {
	mu     sync.Mutex
	series map[string][]float64
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{series: make(map[string][]float64)}
}

// Record appends one observation per metric in stats.
func (h *History) Record(stats map[string]float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.series == nil {
		h.series = make(map[string][]float64)
	}
	for name, value := range stats {
		h.series[name] = append(h.series[name], value)
	}
}

// Series returns a copy of the recorded values for the named metric.
func (h *History) Series(name string) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	src := h.series[name]
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// Last returns the most recent value for the named metric.
// ok is false when the metric has never been recorded.
func (h *History) Last(name string) (value float64, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	src := h.series[name]
	if len(src) == 0 {
		return 0, false
	}
	return src[len(src)-1], true
}

// Names returns the recorded metric names in sorted order.
func (h *History) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.series))
	for name := range h.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of observations for the named metric.
func (h *History) Len(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.series[name])
}
