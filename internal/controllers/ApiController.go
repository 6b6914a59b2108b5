package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"flighttrack/internal/models"
	"flighttrack/internal/providers"
	"flighttrack/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const (
	msgLocationUpdated = "Location updated successfully."
	msgFlightLogged    = "Location updated and flight logged successfully."
	msgTrackingCleared = "Flight logged and tracking cleared successfully."
	msgNothingToLog    = "Flight path not found in current tracking."
)

type messageResponse struct {
	Message   string                 `json:"message"`
	LogStatus string                 `json:"log_status,omitempty"`
	Flight    *models.ArchivedFlight `json:"flight,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type ApiController struct {
	logger  providers.Logger
	service services.TrackServiceInterface
	query   services.TrackQueryEngineInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.TrackServiceInterface, query services.TrackQueryEngineInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		query:   query,
		cache:   cache,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error), onError func(error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	// An archive inserted while computing bumps the version, and the stale body is not cached.
	version := ac.cache.Version(cacheKey)
	result, err := compute()
	if err != nil {
		onError(err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.SetIfVersion(cacheKey, gson, version)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.LocationUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Malformed request body: %s", err))
		return
	}

	result, err := ac.service.Ingest(r.Context(), &payload)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvalidReport):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case result != nil:
		ac.logger.Errorf(providers.TypePost, "Archive of flight %s failed: %s", payload.FlightID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Location updated, but logging failed: %s", err))
		return
	default:
		ac.logger.Errorf(providers.TypePost, "Update for flight %s failed: %s", payload.FlightID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Database operation failed: %s", err))
		return
	}

	if result.Archived != nil {
		writeJSON(w, http.StatusOK, messageResponse{Message: msgFlightLogged, LogStatus: msgTrackingCleared})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgLocationUpdated})
}

func parseTrackOptions(r *http.Request) (services.TrackOptions, error) {
	var opts services.TrackOptions
	q := r.URL.Query()

	if raw := q.Get("all_path"); raw != "" {
		fullPath, err := parseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid all_path %q", raw)
		}
		opts.FullPath = fullPath
	}
	if raw := q.Get("timestamp"); raw != "" {
		ts, err := models.ParseTimestamp(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid timestamp %q", raw)
		}
		opts.AtTime = &ts
	}
	return opts, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func (ac *ApiController) Track(w http.ResponseWriter, r *http.Request) {
	flightID := r.PathValue("flightId")
	opts, err := parseTrackOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	onError := func(err error) {
		ac.writeTrackError(w, flightID, opts, err)
	}
	compute := func() (any, error) {
		res, err := ac.query.TrackActiveOrArchived(r.Context(), flightID, opts)
		if err != nil {
			return nil, err
		}
		return res.Value(), nil
	}

	if opts.FullPath {
		ac.serveFromCacheOrCompute(w, services.PathCacheKey(flightID), compute, onError)
		return
	}

	result, err := compute()
	if err != nil {
		onError(err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) writeTrackError(w http.ResponseWriter, flightID string, opts services.TrackOptions, err error) {
	if !errors.Is(err, models.ErrNotFound) {
		ac.logger.Errorf(providers.TypeGet, "Track query for flight %s failed: %s", flightID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Database operation failed: %s", err))
		return
	}
	if opts.FullPath {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Flight %s path not found in historical logs.", flightID))
		return
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Flight %s currently not being tracked or not found at the requested time.", flightID))
}

// ArchiveFlight re-runs the archiving transition for a flight whose earlier archive failed.
func (ac *ApiController) ArchiveFlight(w http.ResponseWriter, r *http.Request) {
	flightID := r.PathValue("flightId")

	flight, err := ac.service.ArchiveFlight(r.Context(), flightID)
	if services.IsNothingToArchive(err) {
		writeJSON(w, http.StatusOK, messageResponse{Message: "nothing to archive", LogStatus: msgNothingToLog})
		return
	}
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Archive retry for flight %s failed: %s", flightID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Logging failed: %s", err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgTrackingCleared, Flight: flight})
}
