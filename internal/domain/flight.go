package domain

import "time"

type FlightStatus string

const (
	FlightStatusActive      FlightStatus = "active"
	FlightStatusDelayed     FlightStatus = "delayed"
	FlightStatusFullyBooked FlightStatus = "fully booked"
	FlightStatusLanded      FlightStatus = "landed"
	FlightStatusCancelled   FlightStatus = "cancelled"
)

// LongHaulThreshold is the flight duration above which only Big aircraft and
// long-haul certified crew may be scheduled.
const LongHaulThreshold = 6 * time.Hour

// FlightCancelWindow is how far before departure a manager may still cancel
// a whole flight; OrderCancelWindow is the customer deadline for an order.
const (
	FlightCancelWindow = 72 * time.Hour
	OrderCancelWindow  = 36 * time.Hour
)

// CrewRestPeriod is the minimum turnaround before a crew member may depart
// from an airport other than the one they last landed at.
const CrewRestPeriod = 24 * time.Hour

type Flight struct {
	Num         string
	Origin      string
	Destination string
	Departure   time.Time
	Arrival     time.Time
	AircraftID  int64
	Status      FlightStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func IsLongHaul(departure, arrival time.Time) bool {
	return arrival.Sub(departure) > LongHaulThreshold
}

// CanCancelFlight reports whether a flight departing at departure may still
// be cancelled by a manager at instant now.
func CanCancelFlight(departure, now time.Time) bool {
	return departure.Sub(now) >= FlightCancelWindow
}

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusTaken     SeatStatus = "taken"
)

// SeatRef identifies a seat within an aircraft cabin.
type SeatRef struct {
	Class  CabinClass `json:"class"`
	Row    int        `json:"row"`
	Column string     `json:"column"`
}

// FlightSeat is one row of the per-flight seat ledger.
type FlightSeat struct {
	FlightNum  string
	AircraftID int64
	Seat       SeatRef
	Status     SeatStatus
}

type ClassPrice struct {
	Class      CabinClass `json:"class"`
	PriceCents int64      `json:"price_cents"`
}
