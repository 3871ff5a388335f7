package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/kafka"
	"github.com/Domenick1991/flytau/internal/repository"
	"github.com/Domenick1991/flytau/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BookSeats(ctx context.Context, rec repository.BookingRecord) (*domain.Order, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) CancelOrder(ctx context.Context, orderID int64, email string, now time.Time) (*domain.Order, bool, error) {
	args := m.Called(ctx, orderID, email, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Order), args.Bool(1), args.Error(2)
}

func (m *MockOrderRepository) GetForCustomer(ctx context.Context, orderID int64, email string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Seats(ctx context.Context, orderID int64) ([]domain.OrderSeat, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.OrderSeat), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireSeatLock(ctx context.Context, flightNum string, seat domain.SeatRef, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, flightNum, seat, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseSeatLock(ctx context.Context, flightNum string, seat domain.SeatRef) error {
	args := m.Called(ctx, flightNum, seat)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var (
	seat12A = domain.SeatRef{Class: domain.ClassEconomy, Row: 12, Column: "A"}
	seat12B = domain.SeatRef{Class: domain.ClassEconomy, Row: 12, Column: "B"}
)

func newTestService(orders repository.OrderRepository, cache Cache, producer Producer) *BookingService {
	return NewBookingService(orders, cache, producer, "order_events", time.Minute, logger.NewLogger())
}

func TestBook_Success(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}
	service := newTestService(mockOrders, mockCache, mockProducer)

	ctx := context.Background()
	input := BookInput{
		FlightNum: "F12",
		Email:     "customer@example.com",
		Seats:     []domain.SeatRef{seat12A, seat12B},
	}

	order := &domain.Order{
		ID:             41,
		Reference:      "ref",
		Email:          "customer@example.com",
		FlightNum:      "F12",
		Status:         domain.OrderStatusActive,
		TotalPaidCents: 30000,
	}

	mockCache.On("AcquireSeatLock", ctx, "F12", seat12A, time.Minute).Return(true, nil).Once()
	mockCache.On("AcquireSeatLock", ctx, "F12", seat12B, time.Minute).Return(true, nil).Once()
	mockOrders.On("BookSeats", ctx, mock.MatchedBy(func(rec repository.BookingRecord) bool {
		return rec.FlightNum == "F12" && rec.Email == "customer@example.com" &&
			len(rec.Seats) == 2 && rec.Reference != ""
	})).Return(order, nil).Once()
	mockCache.On("ReleaseSeatLock", ctx, "F12", seat12A).Return(nil).Once()
	mockCache.On("ReleaseSeatLock", ctx, "F12", seat12B).Return(nil).Once()
	mockProducer.On("Publish", ctx, "order_events", "ref", mock.AnythingOfType("kafka.OrderEvent")).Return(nil).Once()

	got, err := service.Book(ctx, input)

	assert.NoError(t, err)
	assert.Equal(t, order, got)
	mockOrders.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBook_ValidationErrors(t *testing.T) {
	service := newTestService(&MockOrderRepository{}, nil, nil)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input BookInput
	}{
		{"missing flight", BookInput{Email: "a@b.c", Seats: []domain.SeatRef{seat12A}}},
		{"no seats", BookInput{FlightNum: "F12", Email: "a@b.c"}},
		{"no identity", BookInput{FlightNum: "F12", Seats: []domain.SeatRef{seat12A}}},
		{"guest without email", BookInput{FlightNum: "F12", Guest: &domain.Guest{FirstName: "A"}, Seats: []domain.SeatRef{seat12A}}},
		{"duplicate seat", BookInput{FlightNum: "F12", Email: "a@b.c", Seats: []domain.SeatRef{seat12A, seat12A}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := service.Book(ctx, tc.input)
			assert.Error(t, err)
			assert.Nil(t, order)
		})
	}
}

func TestBook_SeatCountMismatch(t *testing.T) {
	service := newTestService(&MockOrderRepository{}, nil, nil)

	input := BookInput{
		FlightNum:  "F12",
		Email:      "a@b.c",
		Passengers: 3,
		Seats:      []domain.SeatRef{seat12A, seat12B},
	}

	_, err := service.Book(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrSeatCountMismatch)
}

func TestBook_SeatLockHeldByOtherBooking(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockOrders, mockCache, nil)

	ctx := context.Background()
	input := BookInput{FlightNum: "F12", Email: "a@b.c", Seats: []domain.SeatRef{seat12A, seat12B}}

	mockCache.On("AcquireSeatLock", ctx, "F12", seat12A, time.Minute).Return(true, nil).Once()
	mockCache.On("AcquireSeatLock", ctx, "F12", seat12B, time.Minute).Return(false, nil).Once()
	mockCache.On("ReleaseSeatLock", ctx, "F12", seat12A).Return(nil).Once()

	order, err := service.Book(ctx, input)

	assert.Nil(t, order)
	var unavailable *domain.SeatUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []domain.SeatRef{seat12B}, unavailable.Seats)
	mockCache.AssertExpectations(t)
	mockOrders.AssertNotCalled(t, "BookSeats")
}

func TestBook_SeatUnavailableReleasesLocks(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockOrders, mockCache, nil)

	ctx := context.Background()
	input := BookInput{FlightNum: "F12", Email: "a@b.c", Seats: []domain.SeatRef{seat12A}}

	mockCache.On("AcquireSeatLock", ctx, "F12", seat12A, time.Minute).Return(true, nil).Once()
	mockOrders.On("BookSeats", ctx, mock.Anything).
		Return(nil, &domain.SeatUnavailableError{FlightNum: "F12", Seats: []domain.SeatRef{seat12A}}).Once()
	mockCache.On("ReleaseSeatLock", ctx, "F12", seat12A).Return(nil).Once()

	order, err := service.Book(ctx, input)

	assert.Nil(t, order)
	var unavailable *domain.SeatUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	mockCache.AssertExpectations(t)
	mockOrders.AssertExpectations(t)
}

func TestBook_GuestIdentityUsed(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	service := newTestService(mockOrders, nil, nil)

	ctx := context.Background()
	guest := &domain.Guest{FirstName: "Dana", LastName: "Levi", Email: "dana@example.com", Phone: "0500000000"}
	order := &domain.Order{ID: 9, Email: "dana@example.com", FlightNum: "F3", Status: domain.OrderStatusActive}

	mockOrders.On("BookSeats", ctx, mock.MatchedBy(func(rec repository.BookingRecord) bool {
		return rec.Guest == guest
	})).Return(order, nil).Once()

	got, err := service.Book(ctx, BookInput{FlightNum: "F3", Guest: guest, Seats: []domain.SeatRef{seat12A}})

	assert.NoError(t, err)
	assert.Equal(t, order, got)
	mockOrders.AssertExpectations(t)
}

func TestCancelOrder_PublishesEvent(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	mockProducer := &MockProducer{}
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	service := NewBookingService(mockOrders, nil, mockProducer, "order_events", time.Minute,
		logger.NewLogger(), WithClock(func() time.Time { return now }))

	ctx := context.Background()
	cancelled := &domain.Order{
		ID:        41,
		Reference: "ref",
		Email:     "customer@example.com",
		FlightNum: "F12",
		Status:    domain.OrderStatusCustomerCancel,
	}

	mockOrders.On("CancelOrder", ctx, int64(41), "customer@example.com", now).Return(cancelled, true, nil).Once()
	mockProducer.On("Publish", ctx, "order_events", "ref", mock.MatchedBy(func(event kafka.OrderEvent) bool {
		return event.Type == "order_cancelled" && event.OrderID == 41
	})).Return(nil).Once()

	got, err := service.CancelOrder(ctx, 41, "customer@example.com")

	assert.NoError(t, err)
	assert.Equal(t, cancelled, got)
	mockOrders.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestCancelOrder_SecondCallIsNoOp(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	mockProducer := &MockProducer{}
	service := newTestService(mockOrders, nil, mockProducer)

	ctx := context.Background()
	already := &domain.Order{ID: 41, Status: domain.OrderStatusCustomerCancel}

	mockOrders.On("CancelOrder", ctx, int64(41), "customer@example.com", mock.AnythingOfType("time.Time")).
		Return(already, false, nil).Once()

	got, err := service.CancelOrder(ctx, 41, "customer@example.com")

	assert.NoError(t, err)
	assert.Equal(t, already, got)
	mockOrders.AssertExpectations(t)
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestCancelOrder_WindowClosed(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	service := newTestService(mockOrders, nil, nil)

	ctx := context.Background()
	mockOrders.On("CancelOrder", ctx, int64(41), "customer@example.com", mock.AnythingOfType("time.Time")).
		Return(nil, false, domain.ErrCancellationWindowClosed).Once()

	got, err := service.CancelOrder(ctx, 41, "customer@example.com")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrCancellationWindowClosed)
}

func TestGetOrder_Success(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	service := newTestService(mockOrders, nil, nil)

	ctx := context.Background()
	order := &domain.Order{ID: 41, Email: "a@b.c", FlightNum: "F12"}
	seats := []domain.OrderSeat{{OrderID: 41, FlightNum: "F12", Seat: seat12A, PriceCents: 15000}}

	mockOrders.On("GetForCustomer", ctx, int64(41), "a@b.c").Return(order, nil).Once()
	mockOrders.On("Seats", ctx, int64(41)).Return(seats, nil).Once()

	gotOrder, gotSeats, err := service.GetOrder(ctx, 41, "a@b.c")

	assert.NoError(t, err)
	assert.Equal(t, order, gotOrder)
	assert.Equal(t, seats, gotSeats)
	mockOrders.AssertExpectations(t)
}

func TestGetOrder_NotFound(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	service := newTestService(mockOrders, nil, nil)

	ctx := context.Background()
	mockOrders.On("GetForCustomer", ctx, int64(404), "a@b.c").Return(nil, domain.ErrOrderNotFound).Once()

	_, _, err := service.GetOrder(ctx, 404, "a@b.c")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestBook_PublishFailureDoesNotFailBooking(t *testing.T) {
	mockOrders := &MockOrderRepository{}
	mockProducer := &MockProducer{}
	service := newTestService(mockOrders, nil, mockProducer)

	ctx := context.Background()
	order := &domain.Order{ID: 1, Reference: "ref", FlightNum: "F1", Status: domain.OrderStatusActive}

	mockOrders.On("BookSeats", ctx, mock.Anything).Return(order, nil).Once()
	mockProducer.On("Publish", ctx, "order_events", "ref", mock.Anything).Return(errors.New("kafka down")).Once()

	got, err := service.Book(ctx, BookInput{FlightNum: "F1", Email: "a@b.c", Seats: []domain.SeatRef{seat12A}})

	assert.NoError(t, err)
	assert.Equal(t, order, got)
}
