package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.RecordHTTPRequest("GET", "/api/v1/jobs", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/v1/jobs", 201, 20*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/jobs", 502, time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/jobs", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/jobs", "5xx")))
}

func TestRecordJobAndUpload(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.RecordJob("edit", "success")
	m.RecordJob("edit", "success")
	m.RecordJob("replace", "invalid")
	m.RecordUpload("success", 2048)
	m.RecordUpload("rejected", 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.JobsTotal.WithLabelValues("edit", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobsTotal.WithLabelValues("replace", "invalid")))
	assert.Equal(t, float64(2048), testutil.ToFloat64(m.UploadBytes))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UploadsTotal.WithLabelValues("rejected")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordJob("edit", "success")
		m.RecordGeneration("edit", "demo", time.Second)
		m.RecordUpload("success", 1)
	})
}

func TestStatusCodeToString(t *testing.T) {
	assert.Equal(t, "2xx", statusCodeToString(204))
	assert.Equal(t, "3xx", statusCodeToString(301))
	assert.Equal(t, "4xx", statusCodeToString(404))
	assert.Equal(t, "5xx", statusCodeToString(502))
	assert.Equal(t, "unknown", statusCodeToString(100))
}
