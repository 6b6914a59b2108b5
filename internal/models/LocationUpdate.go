package models

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// naiveLayouts are accepted for timestamps without a zone, which are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts RFC 3339 and treats timestamps without a zone as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return ts.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if naive, nerr := time.ParseInLocation(layout, raw, time.UTC); nerr == nil {
			return naive, nil
		}
	}
	return time.Time{}, err
}

// LocationUpdate is the inbound ingestion payload. DestinationReached is
// consumed by ingestion and never stored with the report.
type LocationUpdate struct {
	FlightID           string    `json:"flightId"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
	Altitude           *int      `json:"altitude"`
	Timestamp          time.Time `json:"timestamp"`
	Status             string    `json:"status"`
	DestinationReached bool      `json:"destinationReached"`
}

func (u *LocationUpdate) UnmarshalJSON(data []byte) error {
	var raw struct {
		FlightID           string   `json:"flightId"`
		Latitude           *float64 `json:"latitude"`
		Longitude          *float64 `json:"longitude"`
		Altitude           *int     `json:"altitude"`
		Timestamp          *string  `json:"timestamp"`
		Status             string   `json:"status"`
		DestinationReached bool     `json:"destinationReached"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = LocationUpdate{
		FlightID:           raw.FlightID,
		Latitude:           raw.Latitude,
		Longitude:          raw.Longitude,
		Altitude:           raw.Altitude,
		Status:             raw.Status,
		DestinationReached: raw.DestinationReached,
	}
	if raw.Timestamp != nil {
		ts, err := ParseTimestamp(*raw.Timestamp)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", *raw.Timestamp, err)
		}
		u.Timestamp = ts
	}
	return nil
}

// Validate checks the ingestion pre-conditions. The returned error wraps ErrInvalidReport.
func (u *LocationUpdate) Validate() error {
	var problems []string
	if strings.TrimSpace(u.FlightID) == "" {
		problems = append(problems, "flightId is required")
	}
	if u.Latitude == nil {
		problems = append(problems, "latitude is required")
	} else if *u.Latitude < -90 || *u.Latitude > 90 {
		problems = append(problems, fmt.Sprintf("latitude %v out of range [-90, 90]", *u.Latitude))
	}
	if u.Longitude == nil {
		problems = append(problems, "longitude is required")
	} else if *u.Longitude < -180 || *u.Longitude > 180 {
		problems = append(problems, fmt.Sprintf("longitude %v out of range [-180, 180]", *u.Longitude))
	}
	if u.Altitude != nil && *u.Altitude < 0 {
		problems = append(problems, fmt.Sprintf("altitude %d must be >= 0", *u.Altitude))
	}
	if u.Timestamp.IsZero() {
		problems = append(problems, "timestamp is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidReport, strings.Join(problems, "; "))
	}
	return nil
}

// ToReport converts a validated update to the stored report, applying defaults.
func (u *LocationUpdate) ToReport() *PositionReport {
	report := &PositionReport{
		FlightID:  u.FlightID,
		Timestamp: u.Timestamp.UTC(),
		Status:    u.Status,
	}
	if u.Latitude != nil {
		report.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		report.Longitude = *u.Longitude
	}
	if u.Altitude != nil {
		report.Altitude = *u.Altitude
	}
	if report.Status == "" {
		report.Status = DefaultStatus
	}
	return report
}
