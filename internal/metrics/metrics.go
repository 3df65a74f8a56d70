// Package metrics exposes the Prometheus collectors shared by the pipeline
// stages, external clients and the daemon's /metrics endpoint.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the newsroom collectors.
type Metrics struct {
	TranscriptFetches *prometheus.CounterVec
	StageItems        *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	LLMRequests       *prometheus.CounterVec
	ImageRequests     *prometheus.CounterVec
	Discovered        prometheus.Counter
	QueueSize         prometheus.Gauge
}

// Default returns the process-wide collectors, registering them with the
// default Prometheus registry on first use.
//
// Metrics:
//   - newsroom_transcript_fetch_total{source,result}
//   - newsroom_stage_items_total{stage,result}
//   - newsroom_stage_duration_seconds{stage}
//   - newsroom_llm_requests_total{operation,result}
//   - newsroom_image_requests_total{result}
//   - newsroom_discovered_total
//   - newsroom_queue_size
func Default() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			TranscriptFetches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "newsroom_transcript_fetch_total",
					Help: "Transcript lookups by source (cache, primary, fallback) and result",
				},
				[]string{"source", "result"},
			),
			StageItems: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "newsroom_stage_items_total",
					Help: "Items processed by pipeline stage and result",
				},
				[]string{"stage", "result"},
			),
			StageDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "newsroom_stage_duration_seconds",
					Help:    "Duration of pipeline stage batches in seconds",
					Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
				},
				[]string{"stage"},
			),
			LLMRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "newsroom_llm_requests_total",
					Help: "Text model requests by operation and result",
				},
				[]string{"operation", "result"},
			),
			ImageRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "newsroom_image_requests_total",
					Help: "Image model requests by result",
				},
				[]string{"result"},
			),
			Discovered: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "newsroom_discovered_total",
					Help: "Video ids added to the queue by discovery",
				},
			),
			QueueSize: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "newsroom_queue_size",
					Help: "Number of video ids waiting in the queue",
				},
			),
		}
	})
	return globalMetrics
}

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultHit     = "hit"
	ResultSkipped = "skipped"
)

// RecordTranscriptFetch counts one transcript lookup.
func (m *Metrics) RecordTranscriptFetch(source, result string) {
	if m == nil {
		return
	}
	m.TranscriptFetches.WithLabelValues(source, result).Inc()
}

// RecordStageItem counts one processed stage item.
func (m *Metrics) RecordStageItem(stage, result string) {
	if m == nil {
		return
	}
	m.StageItems.WithLabelValues(stage, result).Inc()
}

// ObserveStage records how long a stage batch took.
func (m *Metrics) ObserveStage(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// RecordLLMRequest counts one text model request.
func (m *Metrics) RecordLLMRequest(operation string, err error) {
	if m == nil {
		return
	}
	m.LLMRequests.WithLabelValues(operation, resultFor(err)).Inc()
}

// RecordImageRequest counts one image model request.
func (m *Metrics) RecordImageRequest(err error) {
	if m == nil {
		return
	}
	m.ImageRequests.WithLabelValues(resultFor(err)).Inc()
}

// RecordDiscovered adds newly queued ids.
func (m *Metrics) RecordDiscovered(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.Discovered.Add(float64(count))
}

// SetQueueSize updates the queue size gauge.
func (m *Metrics) SetQueueSize(size int) {
	if m == nil {
		return
	}
	m.QueueSize.Set(float64(size))
}

func resultFor(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
