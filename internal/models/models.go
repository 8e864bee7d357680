package models

import (
	"sort"
	"strings"
	"time"
)

// Status is the ride lifecycle state as reported by the backend. The wire
// format is a free-form string with inconsistent casing, so it is parsed once
// at the API boundary instead of being compared case-insensitively all over.
type Status int

const (
	StatusUnknown Status = iota
	StatusRequested
	StatusAccepted
	StatusCompleted
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusRequested: "REQUESTED",
	StatusAccepted:  "ACCEPTED",
	StatusCompleted: "COMPLETED",
	StatusCancelled: "CANCELLED",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// Terminal reports whether the ride can no longer change state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus normalizes a backend status string to a Status.
// Unrecognized values map to StatusUnknown rather than an error; the server
// is authoritative and the client merely reflects what it polls.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "REQUESTED":
		return StatusRequested
	case "ACCEPTED":
		return StatusAccepted
	case "COMPLETED":
		return StatusCompleted
	case "CANCELLED", "CANCELED":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// Ride is a transportation request as seen by the client. Server-owned; the
// client only reads it and triggers transitions through the API.
type Ride struct {
	ID          string    `json:"id"`
	RawStatus   string    `json:"status"`
	Pickup      string    `json:"pickup_location"`
	Destination string    `json:"destination_location"`
	RiderName   string    `json:"rider_name"`
	ScheduledAt time.Time `json:"scheduled_time"`
}

// Status returns the parsed lifecycle state.
func (r Ride) Status() Status { return ParseStatus(r.RawStatus) }

// Driver identifies the driver behind an offer.
type Driver struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"` // 0..5
}

// Vehicle describes the car attached to an offer.
type Vehicle struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Color string `json:"color"`
}

// Offer is a driver's priced bid against a specific ride.
type Offer struct {
	ID       string  `json:"id"`
	RideID   string  `json:"ride_id"`
	Driver   Driver  `json:"driver"`
	Vehicle  Vehicle `json:"vehicle"`
	Price    float64 `json:"price"`
	Selected bool    `json:"selected"`
}

// SortOffersByPrice orders offers ascending by price, stable for ties.
func SortOffersByPrice(offers []Offer) {
	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })
}

// SortOffersByRating orders offers descending by driver rating, stable for ties.
func SortOffersByRating(offers []Offer) {
	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Driver.Rating > offers[j].Driver.Rating })
}
