package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeops/poolwatch/internal/api"
	"github.com/edgeops/poolwatch/internal/monitoring"
	"github.com/edgeops/poolwatch/internal/watcher"
)

type staticSource struct {
	snap watcher.Snapshot
}

func (s staticSource) Snapshot() watcher.Snapshot { return s.snap }

func testServer() (*api.Server, *monitoring.Metrics) {
	metrics := monitoring.NewMetrics()
	logger := monitoring.New(monitoring.LoggerConfig{Level: "error", Output: "stderr"})
	source := staticSource{snap: watcher.Snapshot{
		ActivePool: "blue",
		WindowLen:  42,
		ErrorRate:  3.5,
		Threshold:  2.0,
	}}
	return api.New("127.0.0.1:0", source, metrics, logger), metrics
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Status(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap watcher.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "blue", snap.ActivePool)
	assert.Equal(t, 42, snap.WindowLen)
	assert.InDelta(t, 3.5, snap.ErrorRate, 0.001)
}

func TestServer_Metrics(t *testing.T) {
	srv, metrics := testServer()
	metrics.RecordLine(true)
	metrics.RecordAlertFired()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats["lines"])
	assert.Equal(t, int64(1), stats["alerts_fired"])
}

func TestServer_UnknownRoute(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
