package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRouteNotFound            = errors.New("no route between airports")
	ErrNoFlightsOnDate          = errors.New("no flights on the requested date")
	ErrFlightNotFound           = errors.New("flight not found")
	ErrFlightNumberTaken        = errors.New("flight number already exists")
	ErrOrderNotFound            = errors.New("order not found")
	ErrSeatCountMismatch        = errors.New("seat selection does not match passenger count")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrWorkerIDTaken            = errors.New("worker id already exists")
	ErrNoAircraftAvailable      = errors.New("no aircraft available for the requested window")
	ErrInsufficientCrew         = errors.New("insufficient crew for the flight")
)

// ValidationError marks caller input rejected before any storage work.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validation(msg string) error {
	return &ValidationError{Msg: msg}
}

// SeatNotFoundError reports requested seats that do not belong to the flight.
type SeatNotFoundError struct {
	FlightNum string
	Seats     []SeatRef
}

func (e *SeatNotFoundError) Error() string {
	return fmt.Sprintf("flight %s has no such seats: %s", e.FlightNum, formatSeats(e.Seats))
}

// SeatUnavailableError reports requested seats that are already taken.
type SeatUnavailableError struct {
	FlightNum string
	Seats     []SeatRef
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats not available on flight %s: %s", e.FlightNum, formatSeats(e.Seats))
}

// PriceMissingError reports a cabin class with no price row for the flight.
type PriceMissingError struct {
	FlightNum string
	Class     CabinClass
}

func (e *PriceMissingError) Error() string {
	return fmt.Sprintf("flight %s has no price for class %s", e.FlightNum, e.Class)
}

func formatSeats(seats []SeatRef) string {
	parts := make([]string, 0, len(seats))
	for _, s := range seats {
		parts = append(parts, fmt.Sprintf("%s %d%s", s.Class, s.Row, s.Column))
	}
	return strings.Join(parts, ", ")
}
