package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"flighttrack/internal/services"
	"flighttrack/internal/storage"
)

type HealthController struct {
	service   services.TrackServiceInterface
	stores    *storage.Stores
	startTime time.Time
}

type healthResponse struct {
	Status          string  `json:"status"`
	Uptime          string  `json:"uptime"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	StorageDriver   string  `json:"storage_driver"`
	ReportsIngested int64   `json:"reports_ingested"`
	FlightsArchived int64   `json:"flights_archived"`
	ArchiveFailures int64   `json:"archive_failures"`
	FlightsLocked   int     `json:"flights_locked"`
	ActiveFlights   *int    `json:"active_flights,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	stats := hc.service.Stats()
	resp := healthResponse{
		Status:          "ok",
		Uptime:          formatDuration(uptime),
		UptimeSeconds:   uptime.Seconds(),
		StorageDriver:   hc.stores.Driver,
		ReportsIngested: stats.ReportsIngested,
		FlightsArchived: stats.FlightsArchived,
		ArchiveFailures: stats.ArchiveFailures,
		FlightsLocked:   stats.FlightsInProcess,
	}
	if hc.stores.Memory != nil {
		n := hc.stores.Memory.ActiveFlights()
		resp.ActiveFlights = &n
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.TrackServiceInterface, stores *storage.Stores) *HealthController {
	return &HealthController{
		service:   service,
		stores:    stores,
		startTime: time.Now(),
	}
}
