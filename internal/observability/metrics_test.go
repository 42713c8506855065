package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/issue-tracker/internal/config"
)

func TestMetrics_RecordOperation(t *testing.T) {
	m := NewMetrics()
	m.RecordOperation("create", "ok")
	m.RecordOperation("create", "ok")
	m.RecordOperation("update", "UPDATE_FAILED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationCount.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationCount.WithLabelValues("update", "UPDATE_FAILED")))
}

func TestMetrics_RecordRequestAndError(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/issues/:project", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/issues/:project", "PUT", "INTERNAL_ERROR")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/api/issues/:project", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("PUT", "/api/issues/:project", "INTERNAL_ERROR")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOperation("create", "ok")
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
	})
}

func TestNewLogger_FallsBackOnUnknownLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
