package domain

import "time"

type PlaneSize string

const (
	PlaneSizeSmall PlaneSize = "Small"
	PlaneSizeBig   PlaneSize = "Big"
)

type CabinClass string

const (
	ClassBusiness CabinClass = "Business"
	ClassEconomy  CabinClass = "Economy"
)

type Aircraft struct {
	ID           int64
	Manufacturer string
	Size         PlaneSize
	PurchaseDate time.Time
	CreatedAt    time.Time
}

// AircraftLayout describes the cabin grid of a new aircraft. Business
// dimensions are required for Big planes and must be zero for Small ones.
type AircraftLayout struct {
	Manufacturer string
	Size         PlaneSize
	PurchaseDate time.Time
	EconomyRows  int
	EconomyCols  int
	BusinessRows int
	BusinessCols int
}

// ColumnLetters returns the seat column letters for a cabin of n columns.
func ColumnLetters(n int) []string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if n < 0 {
		n = 0
	}
	if n > len(alphabet) {
		n = len(alphabet)
	}
	cols := make([]string, 0, n)
	for i := 0; i < n; i++ {
		cols = append(cols, string(alphabet[i]))
	}
	return cols
}

// CrewNeeds returns the minimum pilots and attendants for a plane size.
func CrewNeeds(size PlaneSize) (pilots, attendants int) {
	if size == PlaneSizeBig {
		return 3, 6
	}
	return 2, 3
}
