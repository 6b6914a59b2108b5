package models

import "time"

type PathPoint struct {
	Lat float64   `json:"lat" bson:"lat"`
	Lon float64   `json:"lon" bson:"lon"`
	Alt int       `json:"alt" bson:"alt"`
	Ts  time.Time `json:"ts" bson:"ts"`
}

// ArchivedFlight is the immutable record of a completed flight.
// A flight id may be archived more than once over time; ID tells the records apart.
type ArchivedFlight struct {
	ID            string      `json:"id" bson:"archiveId"`
	FlightID      string      `json:"flightId" bson:"flightId"`
	DepartureTime time.Time   `json:"departureTime" bson:"departureTime"`
	ArrivalTime   time.Time   `json:"arrivalTime" bson:"arrivalTime"`
	Path          []PathPoint `json:"path" bson:"path"`
	LoggedAt      time.Time   `json:"logged_at" bson:"logged_at"`
}

// ArchivedFlightEvent is published after a flight has been archived.
type ArchivedFlightEvent struct {
	ID            string    `json:"id"`
	FlightID      string    `json:"flightId"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	Points        int       `json:"points"`
	LoggedAt      time.Time `json:"logged_at"`
}

func (a *ArchivedFlight) Event() ArchivedFlightEvent {
	return ArchivedFlightEvent{
		ID:            a.ID,
		FlightID:      a.FlightID,
		DepartureTime: a.DepartureTime,
		ArrivalTime:   a.ArrivalTime,
		Points:        len(a.Path),
		LoggedAt:      a.LoggedAt,
	}
}
