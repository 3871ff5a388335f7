package domain

import "time"

type OrderStatus string

const (
	OrderStatusActive         OrderStatus = "Active"
	OrderStatusCustomerCancel OrderStatus = "customer cancellation"
	OrderStatusSystemCancel   OrderStatus = "system cancellation"
	OrderStatusCompleted      OrderStatus = "completed"
)

type Order struct {
	ID                   int64
	Reference            string
	Email                string
	FlightNum            string
	OrderDate            time.Time
	Status               OrderStatus
	TotalPaidCents       int64
	CancellationFeeCents int64
}

// OrderSeat is a purchased seat, linked 1:1 to a flight_seat row by the
// (flight, aircraft, class, row, column) composite key.
type OrderSeat struct {
	OrderID    int64
	FlightNum  string
	AircraftID int64
	Seat       SeatRef
	PriceCents int64
}

// Guest identifies an unregistered buyer; it is upserted into the user
// directory as part of the booking transaction.
type Guest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// CanCancelOrder reports whether an order may still be cancelled by the
// customer at instant now. Only Active orders qualify, and departure must be
// strictly more than 36 hours away.
func CanCancelOrder(status OrderStatus, departure, now time.Time) bool {
	if status != OrderStatusActive {
		return false
	}
	return departure.Sub(now) > OrderCancelWindow
}
