package models

import "time"

const DefaultStatus = "En Route"

// PositionReport is one geolocation sample of an active flight.
type PositionReport struct {
	FlightID  string    `json:"flightId" bson:"flightId"`
	Latitude  float64   `json:"latitude" bson:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude"`
	Altitude  int       `json:"altitude" bson:"altitude"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Status    string    `json:"status" bson:"status"`
}

// TrackPoint is the query-side projection of a PositionReport.
type TrackPoint struct {
	FlightID  string    `json:"flightId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  int       `json:"altitude"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

func (r *PositionReport) ToTrackPoint() *TrackPoint {
	status := r.Status
	if status == "" {
		status = DefaultStatus
	}
	return &TrackPoint{
		FlightID:  r.FlightID,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Altitude:  r.Altitude,
		Timestamp: r.Timestamp.UTC(),
		Status:    status,
	}
}

func (r *PositionReport) ToPathPoint() PathPoint {
	return PathPoint{
		Lat: r.Latitude,
		Lon: r.Longitude,
		Alt: r.Altitude,
		Ts:  r.Timestamp.UTC(),
	}
}
