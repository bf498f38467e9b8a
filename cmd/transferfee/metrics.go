// metrics.go - Metrics collection for the transfer-with-fee operator tool
package main

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType represents the type of metric
type MetricType string

const (
	Counter   MetricType = "counter"
	Gauge     MetricType = "gauge"
	Histogram MetricType = "histogram"
)

// histogramWindow bounds the samples kept per histogram.
const histogramWindow = 1000

// Metric represents a single metric
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// HistogramSummary aggregates the retained samples of a histogram.
type HistogramSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
}

// Summary is a point-in-time copy of every metric.
type Summary struct {
	Counters   map[string]int64            `json:"counters"`
	Gauges     map[string]float64          `json:"gauges"`
	Histograms map[string]HistogramSummary `json:"histograms"`
}

// MetricsCollector manages metrics collection. It is safe for concurrent use.
type MetricsCollector struct {
	mu         sync.RWMutex
	metrics    map[string]*Metric
	counters   map[string]int64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{}
	mc.Reset()
	return mc
}

// IncrementCounter increments a counter metric
func (mc *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	mc.counters[key]++
	mc.updateMetric(key, name, Counter, float64(mc.counters[key]), labels)
}

// SetGauge sets a gauge metric value
func (mc *MetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	mc.gauges[key] = value
	mc.updateMetric(key, name, Gauge, value, labels)
}

// RecordHistogram records a value in a histogram
func (mc *MetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	values := append(mc.histograms[key], value)
	if len(values) > histogramWindow {
		values = values[len(values)-histogramWindow:]
	}
	mc.histograms[key] = values
	mc.updateMetric(key, name, Histogram, value, labels)
}

// GetMetric retrieves a metric by name and labels
func (mc *MetricsCollector) GetMetric(name string, labels map[string]string) *Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	m, ok := mc.metrics[makeKey(name, labels)]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

// GetMetricsSummary returns a summary of all metrics
func (mc *MetricsCollector) GetMetricsSummary() Summary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	s := Summary{
		Counters:   make(map[string]int64, len(mc.counters)),
		Gauges:     make(map[string]float64, len(mc.gauges)),
		Histograms: make(map[string]HistogramSummary, len(mc.histograms)),
	}
	for key, v := range mc.counters {
		s.Counters[key] = v
	}
	for key, v := range mc.gauges {
		s.Gauges[key] = v
	}
	for key, values := range mc.histograms {
		if len(values) == 0 {
			continue
		}
		h := HistogramSummary{Count: len(values), Min: values[0], Max: values[0]}
		for _, v := range values {
			h.Min = min(h.Min, v)
			h.Max = max(h.Max, v)
			h.Sum += v
		}
		h.Avg = h.Sum / float64(h.Count)
		s.Histograms[key] = h
	}
	return s
}

// Reset resets all metrics
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.metrics = make(map[string]*Metric)
	mc.counters = make(map[string]int64)
	mc.gauges = make(map[string]float64)
	mc.histograms = make(map[string][]float64)
}

// makeKey creates a unique key for a metric name and labels, with labels in
// sorted order.
func makeKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString("_")
		b.WriteString(k)
		b.WriteString("_")
		b.WriteString(labels[k])
	}
	return b.String()
}

func (mc *MetricsCollector) updateMetric(key, name string, metricType MetricType, value float64, labels map[string]string) {
	mc.metrics[key] = &Metric{
		Name:      name,
		Type:      metricType,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Predefined metric names
const (
	MetricTransferCount         = "transfer_count"
	MetricProofGenerationTime   = "proof_generation_time"
	MetricProofVerificationTime = "proof_verification_time"
	MetricVerificationFailures  = "verification_failures"
	MetricBundleSize            = "bundle_size"
	MetricErrorCount            = "error_count"
)

// Convenience methods for common metrics
func (mc *MetricsCollector) RecordTransfer(variant string) {
	mc.IncrementCounter(MetricTransferCount, map[string]string{"variant": variant})
}

func (mc *MetricsCollector) RecordProofGeneration(duration time.Duration) {
	mc.RecordHistogram(MetricProofGenerationTime, duration.Seconds(), nil)
}

func (mc *MetricsCollector) RecordProofVerification(duration time.Duration) {
	mc.RecordHistogram(MetricProofVerificationTime, duration.Seconds(), nil)
}

func (mc *MetricsCollector) RecordVerificationFailure() {
	mc.IncrementCounter(MetricVerificationFailures, nil)
}

func (mc *MetricsCollector) RecordBundleSize(entries int) {
	mc.SetGauge(MetricBundleSize, float64(entries), nil)
}

func (mc *MetricsCollector) RecordError(errorType string) {
	mc.IncrementCounter(MetricErrorCount, map[string]string{"type": errorType})
}
