package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flighttrack/internal/storage"
)

func healthBody(t *testing.T, hc *HealthController) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHealth_ReturnsOK(t *testing.T) {
	h := newHarness()
	hc := NewHealthController(h.service, &storage.Stores{Driver: storage.DriverMemory, Memory: h.mem})

	resp := healthBody(t, hc)
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Equal(t, "memory", resp["storage_driver"])
	assert.Equal(t, float64(0), resp["active_flights"])
}

func TestHealth_CountersReflected(t *testing.T) {
	h := newHarness()
	hc := NewHealthController(h.service, &storage.Stores{Driver: storage.DriverMemory, Memory: h.mem})
	require.Equal(t, http.StatusOK, h.post(ua1First).Code)
	require.Equal(t, http.StatusOK, h.post(`{"flightId":"DL2","latitude":1,"longitude":1,"timestamp":"2024-01-01T00:00:00Z"}`).Code)
	require.Equal(t, http.StatusOK, h.post(ua1Second).Code)

	resp := healthBody(t, hc)
	assert.Equal(t, float64(3), resp["reports_ingested"])
	assert.Equal(t, float64(1), resp["flights_archived"])
	assert.Equal(t, float64(0), resp["archive_failures"])
	assert.Equal(t, float64(1), resp["active_flights"])

	_, err := h.mem.AllFor(context.Background(), "DL2")
	require.NoError(t, err)
}

func TestHealth_ExternalStoreOmitsActiveFlights(t *testing.T) {
	h := newHarness()
	hc := NewHealthController(h.service, &storage.Stores{Driver: storage.DriverPostgres})

	resp := healthBody(t, hc)
	assert.Equal(t, "postgres", resp["storage_driver"])
	assert.NotContains(t, resp, "active_flights")
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	h := newHarness()
	hc := NewHealthController(h.service, &storage.Stores{Driver: storage.DriverMemory})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h0m0s", formatDuration(0))
	assert.Equal(t, "1h1m1s", formatDuration(time.Hour+time.Minute+time.Second))
	assert.Equal(t, "25h0m0s", formatDuration(25*time.Hour))
}
