package flights

import (
	"context"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/kafka"
	"github.com/Domenick1991/flytau/internal/repository"
	"github.com/Domenick1991/flytau/pkg/logger"
	"github.com/Domenick1991/flytau/pkg/metrics"
)

type FlightUseCase interface {
	Airports(ctx context.Context) ([]string, error)
	AvailableDates(ctx context.Context, origin, destination string) ([]string, error)
	Search(ctx context.Context, date, origin, destination string) ([]FlightOption, error)
	List(ctx context.Context, status domain.FlightStatus) ([]domain.Flight, error)
	Get(ctx context.Context, num string) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Cancel(ctx context.Context, num string) (int64, error)
	CreateAircraft(ctx context.Context, layout domain.AircraftLayout) (int64, error)
	CreateWorker(ctx context.Context, worker domain.Worker) error
}

// FlightsCache is the cache-aside surface for the full flight list.
type FlightsCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// FlightOption is one search result: a flight plus its open seat count.
type FlightOption struct {
	Flight         domain.Flight `json:"flight"`
	AvailableSeats int           `json:"available_seats"`
}

// CreateFlightInput carries a manager's new-flight form. Arrival is derived
// from the route duration, never supplied by the caller.
type CreateFlightInput struct {
	Origin      string
	Destination string
	Departure   time.Time
	AircraftID  int64
	CrewIDs     []int64
	Prices      []domain.ClassPrice
}

type FlightService struct {
	flights     repository.FlightRepository
	aircraft    repository.AircraftRepository
	crew        repository.CrewRepository
	cache       FlightsCache
	producer    Producer
	eventsTopic string
	log         logger.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithMetrics(m *metrics.Metrics) FlightServiceOption {
	return func(s *FlightService) {
		s.metrics = m
	}
}

// WithClock replaces the wall clock, used by tests to pin deadlines.
func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func NewFlightService(
	flights repository.FlightRepository,
	aircraft repository.AircraftRepository,
	crew repository.CrewRepository,
	cache FlightsCache,
	producer Producer,
	eventsTopic string,
	log logger.Logger,
	opts ...FlightServiceOption,
) *FlightService {
	service := &FlightService{
		flights:     flights,
		aircraft:    aircraft,
		crew:        crew,
		cache:       cache,
		producer:    producer,
		eventsTopic: eventsTopic,
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FlightService) Airports(ctx context.Context) ([]string, error) {
	return s.flights.Airports(ctx)
}

// AvailableDates lists future departure dates on a route, either direction.
func (s *FlightService) AvailableDates(ctx context.Context, origin, destination string) ([]string, error) {
	if err := s.checkRoute(ctx, origin, destination); err != nil {
		return nil, err
	}
	return s.flights.AvailableDates(ctx, origin, destination, s.now())
}

// Search lists the bookable flights on a route and date with their open seat
// counts. No flights on a served route is an error the caller can show.
func (s *FlightService) Search(ctx context.Context, date, origin, destination string) ([]FlightOption, error) {
	if err := s.checkRoute(ctx, origin, destination); err != nil {
		return nil, err
	}
	found, err := s.flights.FlightsOn(ctx, date, origin, destination)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrNoFlightsOnDate
	}

	options := make([]FlightOption, 0, len(found))
	for _, flight := range found {
		seats, err := s.flights.CountAvailableSeats(ctx, flight.Num)
		if err != nil {
			return nil, err
		}
		options = append(options, FlightOption{Flight: flight, AvailableSeats: seats})
	}
	return options, nil
}

// List returns flights filtered by status. The unfiltered list is served
// cache-aside; cache failures fall through to the database.
func (s *FlightService) List(ctx context.Context, status domain.FlightStatus) ([]domain.Flight, error) {
	if status == "" && s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.Warn("flights cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.List(ctx, status)
	if err != nil {
		return nil, err
	}

	if status == "" && s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("flights cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) Get(ctx context.Context, num string) (*domain.Flight, error) {
	return s.flights.GetByNum(ctx, num)
}

// Create validates a new flight end to end: route, aircraft size against the
// haul, crew minimums and certification, and pricing coverage. The repository
// re-checks aircraft and crew overlap under the insert transaction.
func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if input.Origin == input.Destination {
		return nil, domain.Validation("origin and destination must differ")
	}
	if !input.Departure.After(s.now()) {
		return nil, domain.Validation("departure must be in the future")
	}

	duration, err := s.flights.RouteDuration(ctx, input.Origin, input.Destination)
	if err != nil {
		return nil, err
	}
	arrival := input.Departure.Add(duration)
	longHaul := domain.IsLongHaul(input.Departure, arrival)

	aircraft, err := s.aircraft.GetByID(ctx, input.AircraftID)
	if err != nil {
		return nil, err
	}
	if longHaul && aircraft.Size != domain.PlaneSizeBig {
		return nil, domain.ErrNoAircraftAvailable
	}

	if err := s.checkCrew(ctx, input.CrewIDs, aircraft.Size, longHaul); err != nil {
		return nil, err
	}
	if err := checkPrices(input.Prices, aircraft.Size); err != nil {
		return nil, err
	}

	num, err := s.flights.NextFlightNum(ctx)
	if err != nil {
		return nil, err
	}

	flight := domain.Flight{
		Num:         num,
		Origin:      input.Origin,
		Destination: input.Destination,
		Departure:   input.Departure,
		Arrival:     arrival,
		AircraftID:  input.AircraftID,
		Status:      domain.FlightStatusActive,
	}
	if err := s.flights.Create(ctx, flight, input.CrewIDs, input.Prices); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("flight created", "flight", num, "origin", input.Origin, "destination", input.Destination)
	return &flight, nil
}

// Cancel cancels a whole flight inside the manager window. Cancelling an
// already-cancelled flight is a no-op.
func (s *FlightService) Cancel(ctx context.Context, num string) (int64, error) {
	flight, err := s.flights.GetByNum(ctx, num)
	if err != nil {
		return 0, err
	}
	if flight.Status == domain.FlightStatusCancelled {
		return 0, nil
	}
	if !domain.CanCancelFlight(flight.Departure, s.now()) {
		return 0, domain.ErrCancellationWindowClosed
	}

	cancelled, err := s.flights.CancelFlight(ctx, num)
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.FlightsCancelled.Inc()
	}
	s.invalidate(ctx)
	s.publishCancelled(ctx, flight, cancelled)
	return cancelled, nil
}

func (s *FlightService) CreateAircraft(ctx context.Context, layout domain.AircraftLayout) (int64, error) {
	if layout.Size != domain.PlaneSizeSmall && layout.Size != domain.PlaneSizeBig {
		return 0, domain.Validation("unknown plane size")
	}
	if layout.EconomyRows <= 0 || layout.EconomyCols <= 0 {
		return 0, domain.Validation("economy cabin dimensions are required")
	}
	if layout.Size == domain.PlaneSizeBig && (layout.BusinessRows <= 0 || layout.BusinessCols <= 0) {
		return 0, domain.Validation("business cabin dimensions are required for Big planes")
	}
	if layout.Size == domain.PlaneSizeSmall && (layout.BusinessRows != 0 || layout.BusinessCols != 0) {
		return 0, domain.Validation("Small planes have no business cabin")
	}
	return s.aircraft.Create(ctx, layout)
}

func (s *FlightService) CreateWorker(ctx context.Context, worker domain.Worker) error {
	if !worker.Role.Valid() {
		return domain.Validation("unknown worker role")
	}
	return s.crew.CreateWorker(ctx, worker)
}

func (s *FlightService) checkRoute(ctx context.Context, origin, destination string) error {
	exists, err := s.flights.RouteExists(ctx, origin, destination)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrRouteNotFound
	}
	return nil
}

func (s *FlightService) checkCrew(ctx context.Context, crewIDs []int64, size domain.PlaneSize, longHaul bool) error {
	workers, err := s.crew.GetByIDs(ctx, crewIDs)
	if err != nil {
		return err
	}
	if len(workers) != len(crewIDs) {
		return domain.ErrInsufficientCrew
	}

	var pilots, attendants int
	for _, worker := range workers {
		if longHaul && !worker.LongHaulCertified {
			return domain.ErrInsufficientCrew
		}
		switch worker.Role {
		case domain.RolePilot:
			pilots++
		case domain.RoleAttendant:
			attendants++
		}
	}

	needPilots, needAttendants := domain.CrewNeeds(size)
	if pilots < needPilots || attendants < needAttendants {
		return domain.ErrInsufficientCrew
	}
	return nil
}

func checkPrices(prices []domain.ClassPrice, size domain.PlaneSize) error {
	byClass := make(map[domain.CabinClass]int64, len(prices))
	for _, price := range prices {
		if price.PriceCents <= 0 {
			return domain.Validation("class price must be positive")
		}
		byClass[price.Class] = price.PriceCents
	}
	if _, ok := byClass[domain.ClassEconomy]; !ok {
		return domain.Validation("economy price is required")
	}
	_, hasBusiness := byClass[domain.ClassBusiness]
	if size == domain.PlaneSizeBig && !hasBusiness {
		return domain.Validation("business price is required for Big planes")
	}
	if size == domain.PlaneSizeSmall && hasBusiness {
		return domain.Validation("Small planes have no business class")
	}
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("flights cache invalidation failed", "error", err)
	}
}

func (s *FlightService) publishCancelled(ctx context.Context, flight *domain.Flight, cancelledOrders int64) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.FlightEvent{
		Type:            "flight_cancelled",
		FlightNum:       flight.Num,
		Origin:          flight.Origin,
		Destination:     flight.Destination,
		Departure:       flight.Departure,
		CancelledOrders: cancelledOrders,
		OccurredAt:      s.now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, flight.Num, event); err != nil {
		s.log.Warn("publish flight event failed", "flight", flight.Num, "error", err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
