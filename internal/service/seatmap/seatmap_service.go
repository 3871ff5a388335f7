package seatmap

import (
	"context"
	"sort"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/repository"
)

type SeatState string

const (
	SeatAvailable SeatState = "AVAILABLE"
	SeatTaken     SeatState = "TAKEN"
)

// ClassGroup is one cabin class of a flight's seat map: the distinct sorted
// rows and columns of its grid, the class price, and per-seat states.
type ClassGroup struct {
	Class      domain.CabinClass            `json:"class"`
	PriceCents int64                        `json:"price_cents"`
	Rows       []int                        `json:"rows"`
	Columns    []string                     `json:"columns"`
	Grid       map[int]map[string]SeatState `json:"grid"`
}

type SeatMapUseCase interface {
	Build(ctx context.Context, flightNum string) ([]ClassGroup, error)
}

type Service struct {
	flights repository.FlightRepository
}

func NewService(flights repository.FlightRepository) *Service {
	return &Service{flights: flights}
}

// Build produces the ordered class groups for a flight, Business before
// Economy. Seat states come pre-resolved from the repository, which trusts
// an Active order linkage over the seat ledger.
func (s *Service) Build(ctx context.Context, flightNum string) ([]ClassGroup, error) {
	seatRows, err := s.flights.SeatMap(ctx, flightNum)
	if err != nil {
		return nil, err
	}
	if len(seatRows) == 0 {
		return nil, domain.ErrFlightNotFound
	}
	return Group(seatRows), nil
}

// Group assembles flat seat rows into sorted class groups.
func Group(seatRows []repository.SeatMapRow) []ClassGroup {
	byClass := make(map[domain.CabinClass]*ClassGroup)

	for _, row := range seatRows {
		group, ok := byClass[row.Seat.Class]
		if !ok {
			group = &ClassGroup{
				Class: row.Seat.Class,
				Grid:  make(map[int]map[string]SeatState),
			}
			byClass[row.Seat.Class] = group
		}
		if group.PriceCents == 0 && row.PriceCents != nil {
			group.PriceCents = *row.PriceCents
		}

		if group.Grid[row.Seat.Row] == nil {
			group.Grid[row.Seat.Row] = make(map[string]SeatState)
		}
		state := SeatAvailable
		if row.Taken {
			state = SeatTaken
		}
		group.Grid[row.Seat.Row][row.Seat.Column] = state
	}

	groups := make([]ClassGroup, 0, len(byClass))
	for _, group := range byClass {
		colSet := make(map[string]struct{})
		for row, cols := range group.Grid {
			group.Rows = append(group.Rows, row)
			for col := range cols {
				colSet[col] = struct{}{}
			}
		}
		sort.Ints(group.Rows)
		for col := range colSet {
			group.Columns = append(group.Columns, col)
		}
		sort.Strings(group.Columns)
		groups = append(groups, *group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return classOrder(groups[i].Class) < classOrder(groups[j].Class)
	})
	return groups
}

func classOrder(class domain.CabinClass) int {
	switch class {
	case domain.ClassBusiness:
		return 0
	case domain.ClassEconomy:
		return 1
	default:
		return 2
	}
}

var _ SeatMapUseCase = (*Service)(nil)
