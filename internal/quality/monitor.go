// Package quality keeps rolling statistics about processed jobs.
package quality

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	DefaultCapacity = 1000
	exportWindow    = 100
)

type Metrics struct {
	ProcessingTime   time.Duration `json:"processing_time_ms"`
	InputImageSize   int64         `json:"input_image_size"`
	OutputImageSize  int64         `json:"output_image_size"`
	CompressionRatio float64       `json:"compression_ratio"`
	QualityScore     float64       `json:"quality_score"`
	Success          bool          `json:"success"`
	RecordedAt       time.Time     `json:"recorded_at"`
}

// MarshalJSON reports the processing time in milliseconds.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	return json.Marshal(struct {
		alias
		ProcessingTime int64 `json:"processing_time_ms"`
	}{
		alias:          alias(m),
		ProcessingTime: m.ProcessingTime.Milliseconds(),
	})
}

type Stats struct {
	TotalProcessed         int     `json:"total_processed"`
	SuccessRate            float64 `json:"success_rate"`
	AverageProcessingTime  float64 `json:"average_processing_time_ms"`
	AverageQualityScore    float64 `json:"average_quality_score"`
	TotalDataSaved         int64   `json:"total_data_saved"`
	OptimizationEfficiency float64 `json:"optimization_efficiency"`
}

type Export struct {
	ExportDate      time.Time `json:"export_date"`
	Stats           Stats     `json:"stats"`
	Recommendations []string  `json:"recommendations"`
	RawMetrics      []Metrics `json:"raw_metrics"`
}

// Monitor holds the most recent metrics up to a fixed capacity. It is safe
// for concurrent use.
type Monitor struct {
	mu       sync.RWMutex
	metrics  []Metrics
	capacity int
	now      func() time.Time
}

func NewMonitor(capacity int) *Monitor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Monitor{
		capacity: capacity,
		now:      time.Now,
	}
}

func (m *Monitor) Record(metrics Metrics) {
	if metrics.RecordedAt.IsZero() {
		metrics.RecordedAt = m.now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics = append(m.metrics, metrics)
	if overflow := len(m.metrics) - m.capacity; overflow > 0 {
		m.metrics = append([]Metrics(nil), m.metrics[overflow:]...)
	}
}

func (m *Monitor) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.metrics)
}

func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return computeStats(m.metrics)
}

func (m *Monitor) Recommendations() []string {
	return recommendationsFor(m.Stats())
}

// Export snapshots the stats together with the latest raw metrics.
func (m *Monitor) Export() Export {
	m.mu.RLock()
	stats := computeStats(m.metrics)
	start := max(len(m.metrics)-exportWindow, 0)
	raw := append([]Metrics{}, m.metrics[start:]...)
	m.mu.RUnlock()

	return Export{
		ExportDate:      m.now().UTC(),
		Stats:           stats,
		Recommendations: recommendationsFor(stats),
		RawMetrics:      raw,
	}
}

func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = nil
}

func computeStats(metrics []Metrics) Stats {
	if len(metrics) == 0 {
		return Stats{}
	}

	var (
		successful   int
		totalTime    time.Duration
		totalScore   float64
		totalInput   int64
		totalSavings int64
	)
	for _, m := range metrics {
		if m.Success {
			successful++
		}
		totalTime += m.ProcessingTime
		totalScore += m.QualityScore
		totalInput += m.InputImageSize
		totalSavings += m.InputImageSize - m.OutputImageSize
	}

	n := float64(len(metrics))
	stats := Stats{
		TotalProcessed:        len(metrics),
		SuccessRate:           float64(successful) / n * 100,
		AverageProcessingTime: float64(totalTime.Milliseconds()) / n,
		AverageQualityScore:   totalScore / n,
		TotalDataSaved:        totalSavings,
	}
	if totalSavings > 0 && totalInput > 0 {
		stats.OptimizationEfficiency = float64(totalSavings) / float64(totalInput) * 100
	}
	return stats
}

func recommendationsFor(stats Stats) []string {
	var out []string
	if stats.SuccessRate < 95 {
		out = append(out, "Consider adjusting image preprocessing parameters to improve success rate")
	}
	if stats.AverageQualityScore < 7 {
		out = append(out, "Image quality could be improved - try higher resolution inputs or better preprocessing")
	}
	if stats.AverageProcessingTime > 5000 {
		out = append(out, "Processing time is high - consider optimizing image sizes or compression settings")
	}
	if stats.OptimizationEfficiency < 20 {
		out = append(out, "Optimization efficiency is low - review compression and enhancement settings")
	}
	if len(out) == 0 {
		out = append(out, "System is performing optimally! All metrics are within excellent ranges.")
	}
	return out
}
