// Package metrics records time-series observations produced while an
// estimation run progresses, so callers can inspect how the running
// estimate converged.
package metrics

import (
	"sync"
	"time"

	"github.com/mcdist/mcdist/pkg/models"
)

// Metric names recorded by the run executor
const (
	MetricRunningEstimate  = "running_estimate"
	MetricSamplesCompleted = "samples_completed"
	MetricDistanceMean     = "distance_mean"
	MetricDistanceStdDev   = "distance_stddev"
)

// Collector collects time-series metrics during an estimation run
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	// Time-series data: metric name -> ordered points
	timeSeries map[string][]*models.MetricPoint
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		startTime:  time.Now(),
		timeSeries: make(map[string][]*models.MetricPoint),
	}
}

// Start marks the start of metric collection
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of metric collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// Elapsed returns the collection duration so far (or total once stopped)
func (c *Collector) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.endTime.IsZero() {
		return time.Since(c.startTime)
	}
	return c.endTime.Sub(c.startTime)
}

// Record records a metric value at a specific timestamp
func (c *Collector) Record(name string, value float64, timestamp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timeSeries[name] = append(c.timeSeries[name], &models.MetricPoint{
		Timestamp: timestamp,
		Name:      name,
		Value:     value,
	})
}

// RecordNow records a metric value at the current time
func (c *Collector) RecordNow(name string, value float64) {
	c.Record(name, value, time.Now())
}

// GetMetricNames returns the names of all recorded metrics
func (c *Collector) GetMetricNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.timeSeries))
	for name := range c.timeSeries {
		names = append(names, name)
	}
	return names
}

// GetTimeSeries returns a copy of all points recorded for a metric
func (c *Collector) GetTimeSeries(name string) []*models.MetricPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.timeSeries[name]
	if points == nil {
		return nil
	}

	result := make([]*models.MetricPoint, len(points))
	for i, p := range points {
		cp := *p
		result[i] = &cp
	}
	return result
}

// GetAggregation summarizes the recorded points for a metric
func (c *Collector) GetAggregation(name string) *models.Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.timeSeries[name]
	if len(points) == 0 {
		return nil
	}

	agg := &models.Aggregation{
		Count: len(points),
		Min:   points[0].Value,
		Max:   points[0].Value,
		Last:  points[len(points)-1].Value,
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Value
		if p.Value < agg.Min {
			agg.Min = p.Value
		}
		if p.Value > agg.Max {
			agg.Max = p.Value
		}
	}
	agg.Mean = sum / float64(len(points))
	return agg
}
