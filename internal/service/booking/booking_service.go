package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/kafka"
	"github.com/Domenick1991/flytau/internal/repository"
	"github.com/Domenick1991/flytau/pkg/logger"
	"github.com/Domenick1991/flytau/pkg/metrics"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID int64, email string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64, email string) (*domain.Order, []domain.OrderSeat, error)
	ListOrders(ctx context.Context, email string) ([]domain.Order, error)
}

type Cache interface {
	AcquireSeatLock(ctx context.Context, flightNum string, seat domain.SeatRef, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, flightNum string, seat domain.SeatRef) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// BookInput carries one seat-selection purchase. Either Email (a registered
// customer) or Guest must be set. Passengers, when non-zero, must match the
// number of selected seats.
type BookInput struct {
	FlightNum  string
	Email      string
	Guest      *domain.Guest
	Passengers int
	Seats      []domain.SeatRef
}

type BookingService struct {
	orders             repository.OrderRepository
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	lockTTL            time.Duration
	log                logger.Logger
	metrics            *metrics.Metrics
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

// WithClock replaces the wall clock, used by tests to pin deadlines.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	orders repository.OrderRepository,
	cache Cache,
	producer Producer,
	eventsTopic string,
	lockTTL time.Duration,
	log logger.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		orders:      orders,
		cache:       cache,
		producer:    producer,
		eventsTopic: eventsTopic,
		lockTTL:     lockTTL,
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book validates the selection, takes advisory seat locks, and runs the
// booking transaction. The transaction re-checks availability under row
// locks, so a lost race surfaces as SeatUnavailable and nothing is written.
func (s *BookingService) Book(ctx context.Context, input BookInput) (*domain.Order, error) {
	if input.FlightNum == "" {
		return nil, domain.Validation("flight number is required")
	}
	if len(input.Seats) == 0 {
		return nil, domain.Validation("at least one seat must be selected")
	}
	if input.Passengers > 0 && input.Passengers != len(input.Seats) {
		return nil, domain.ErrSeatCountMismatch
	}
	seen := make(map[domain.SeatRef]struct{}, len(input.Seats))
	for _, seat := range input.Seats {
		if _, dup := seen[seat]; dup {
			return nil, domain.Validation("duplicate seat in selection")
		}
		seen[seat] = struct{}{}
	}
	email := input.Email
	if input.Guest != nil {
		if input.Guest.Email == "" {
			return nil, domain.Validation("guest email is required")
		}
		email = input.Guest.Email
	}
	if email == "" {
		return nil, domain.Validation("buyer identity is required")
	}

	locked, err := s.lockSeats(ctx, input.FlightNum, input.Seats)
	if err != nil {
		s.countError("seat_locked")
		return nil, err
	}

	order, err := s.orders.BookSeats(ctx, repository.BookingRecord{
		FlightNum: input.FlightNum,
		Email:     input.Email,
		Guest:     input.Guest,
		Seats:     input.Seats,
		Reference: uuid.NewString(),
		OrderDate: s.now(),
	})
	s.unlockSeats(ctx, input.FlightNum, locked)
	if err != nil {
		s.countBookingError(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.publish(ctx, "order_created", order, len(input.Seats))
	return order, nil
}

// CancelOrder applies the customer cancellation path. A repeat call for an
// already-terminated order returns its current state without side effects.
func (s *BookingService) CancelOrder(ctx context.Context, orderID int64, email string) (*domain.Order, error) {
	order, released, err := s.orders.CancelOrder(ctx, orderID, email, s.now())
	if err != nil {
		return nil, err
	}
	if released {
		if s.metrics != nil {
			s.metrics.OrdersCancelled.Inc()
		}
		s.publish(ctx, "order_cancelled", order, 0)
	}
	return order, nil
}

func (s *BookingService) GetOrder(ctx context.Context, orderID int64, email string) (*domain.Order, []domain.OrderSeat, error) {
	order, err := s.orders.GetForCustomer(ctx, orderID, email)
	if err != nil {
		return nil, nil, err
	}
	seats, err := s.orders.Seats(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, seats, nil
}

func (s *BookingService) ListOrders(ctx context.Context, email string) ([]domain.Order, error) {
	return s.orders.ListByEmail(ctx, email)
}

func (s *BookingService) lockSeats(ctx context.Context, flightNum string, seats []domain.SeatRef) ([]domain.SeatRef, error) {
	if s.cache == nil {
		return nil, nil
	}
	locked := make([]domain.SeatRef, 0, len(seats))
	for _, seat := range seats {
		ok, err := s.cache.AcquireSeatLock(ctx, flightNum, seat, s.lockTTL)
		if err != nil {
			s.unlockSeats(ctx, flightNum, locked)
			return nil, err
		}
		if !ok {
			s.unlockSeats(ctx, flightNum, locked)
			return nil, &domain.SeatUnavailableError{FlightNum: flightNum, Seats: []domain.SeatRef{seat}}
		}
		locked = append(locked, seat)
	}
	return locked, nil
}

func (s *BookingService) unlockSeats(ctx context.Context, flightNum string, seats []domain.SeatRef) {
	if s.cache == nil {
		return
	}
	for _, seat := range seats {
		_ = s.cache.ReleaseSeatLock(ctx, flightNum, seat)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, order *domain.Order, seatCount int) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.OrderEvent{
		Type:       eventType,
		Reference:  order.Reference,
		OrderID:    order.ID,
		FlightNum:  order.FlightNum,
		Email:      order.Email,
		SeatCount:  seatCount,
		TotalCents: order.TotalPaidCents,
		Status:     string(order.Status),
		OccurredAt: s.now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, order.Reference, event); err != nil {
		s.log.Warn("publish order event failed", "type", eventType, "order", order.ID, "error", err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, order.Reference, event); err != nil {
			s.log.Warn("publish notification failed", "type", eventType, "order", order.ID, "error", err)
		}
	}
}

func (s *BookingService) countBookingError(err error) {
	var seatNotFound *domain.SeatNotFoundError
	var seatUnavailable *domain.SeatUnavailableError
	var priceMissing *domain.PriceMissingError
	switch {
	case errors.As(err, &seatNotFound):
		s.countError("seat_not_found")
	case errors.As(err, &seatUnavailable):
		s.countError("seat_unavailable")
	case errors.As(err, &priceMissing):
		s.countError("price_missing")
	default:
		s.countError("storage")
	}
}

func (s *BookingService) countError(reason string) {
	if s.metrics != nil {
		s.metrics.BookingErrors.WithLabelValues(reason).Inc()
	}
}

var _ BookingUseCase = (*BookingService)(nil)
