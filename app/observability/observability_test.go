package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{ServiceName: "pug-bot", Environment: "test", LogLevel: "warn", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "pug-bot", entry["service"])
	assert.Equal(t, "test", entry["env"])
}

func TestInitWithoutEndpointServesMetrics(t *testing.T) {
	obs, err := Init(context.Background(), Config{Output: &bytes.Buffer{}})
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	obs.Registry.PugMetrics.RecordQueueSize(context.Background(), 3)

	rec := httptest.NewRecorder()
	obs.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pug_queue_size 3")
}
