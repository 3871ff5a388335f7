package schedule

import (
	"context"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/repository"
)

type ScheduleUseCase interface {
	FreeAircraft(ctx context.Context, departure, arrival time.Time) ([]domain.Aircraft, error)
	AvailableCrew(ctx context.Context, role domain.WorkerRole, departure, arrival time.Time, origin string) ([]domain.Worker, error)
}

// Service answers the read-only scheduling questions asked before a flight is
// created: which aircraft and which crew are free for a window. Results are
// advisory; the flight-creation transaction re-validates them.
type Service struct {
	aircraft repository.AircraftRepository
	crew     repository.CrewRepository
}

func NewService(aircraft repository.AircraftRepository, crew repository.CrewRepository) *Service {
	return &Service{aircraft: aircraft, crew: crew}
}

// FreeAircraft returns aircraft with no overlapping non-cancelled flight.
// Windows over six hours are long-haul and restricted to Big planes.
func (s *Service) FreeAircraft(ctx context.Context, departure, arrival time.Time) ([]domain.Aircraft, error) {
	if !arrival.After(departure) {
		return nil, domain.Validation("arrival must be after departure")
	}
	return s.aircraft.FreeBetween(ctx, departure, arrival, domain.IsLongHaul(departure, arrival))
}

// AvailableCrew returns workers of the role who are free for the window,
// certified when the window is long-haul, and positioned or rested per the
// 24-hour turnaround rule.
func (s *Service) AvailableCrew(ctx context.Context, role domain.WorkerRole, departure, arrival time.Time, origin string) ([]domain.Worker, error) {
	if !role.Valid() {
		return nil, domain.Validation("invalid crew role")
	}
	if !arrival.After(departure) {
		return nil, domain.Validation("arrival must be after departure")
	}
	return s.crew.Available(ctx, role, departure, arrival, domain.IsLongHaul(departure, arrival), origin)
}

var _ ScheduleUseCase = (*Service)(nil)
