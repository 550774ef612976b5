package monitoring

import (
	"maps"
	"sync"
)

// MetricType represents different types of metrics
type MetricType int

const (
	Counter MetricType = iota
	Gauge
)

// Metric describes a registered metric.
type Metric struct {
	Name        string
	Type        MetricType
	Description string
}

// Registry stores and manages metrics. Only registered names are recorded.
type Registry struct {
	metrics map[string]Metric
	values  map[string]float64
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]Metric),
		values:  make(map[string]float64),
	}
}

func (r *Registry) Register(metric Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics[metric.Name] = metric
}

// Add increments a counter by value.
func (r *Registry) Add(name string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if metric, ok := r.metrics[name]; ok && metric.Type == Counter {
		r.values[name] += value
	}
}

// Set replaces the value of a gauge.
func (r *Registry) Set(name string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if metric, ok := r.metrics[name]; ok && metric.Type == Gauge {
		r.values[name] = value
	}
}

// Value returns the current value of name, zero if nothing was recorded.
func (r *Registry) Value(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[name]
}

// Metrics returns the registered metric descriptions.
func (r *Registry) Metrics() map[string]Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.metrics)
}

// Snapshot returns a copy of every recorded value.
func (r *Registry) Snapshot() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.values)
}
