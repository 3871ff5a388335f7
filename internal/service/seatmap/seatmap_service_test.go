package seatmap

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) NextFlightNum(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight domain.Flight, crewIDs []int64, prices []domain.ClassPrice) error {
	args := m.Called(ctx, flight, crewIDs, prices)
	return args.Error(0)
}

func (m *MockFlightRepository) GetByNum(ctx context.Context, num string) (*domain.Flight, error) {
	args := m.Called(ctx, num)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) List(ctx context.Context, status domain.FlightStatus) ([]domain.Flight, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Airports(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlightRepository) RouteExists(ctx context.Context, origin, destination string) (bool, error) {
	args := m.Called(ctx, origin, destination)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) RouteDuration(ctx context.Context, origin, destination string) (time.Duration, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockFlightRepository) AvailableDates(ctx context.Context, origin, destination string, after time.Time) ([]string, error) {
	args := m.Called(ctx, origin, destination, after)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlightRepository) FlightsOn(ctx context.Context, date, origin, destination string) ([]domain.Flight, error) {
	args := m.Called(ctx, date, origin, destination)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) CountAvailableSeats(ctx context.Context, num string) (int, error) {
	args := m.Called(ctx, num)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightRepository) SeatMap(ctx context.Context, num string) ([]repository.SeatMapRow, error) {
	args := m.Called(ctx, num)
	return args.Get(0).([]repository.SeatMapRow), args.Error(1)
}

func (m *MockFlightRepository) CancelFlight(ctx context.Context, num string) (int64, error) {
	args := m.Called(ctx, num)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightRepository) SweepLanded(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightRepository) MarkFullyBooked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightRepository) ReactivateFullyBooked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func price(cents int64) *int64 {
	return &cents
}

func TestBuild_GroupsAndOrdersClasses(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	seatRows := []repository.SeatMapRow{
		{Seat: domain.SeatRef{Class: domain.ClassEconomy, Row: 2, Column: "A"}, Taken: false, PriceCents: price(15000)},
		{Seat: domain.SeatRef{Class: domain.ClassEconomy, Row: 1, Column: "B"}, Taken: true, PriceCents: price(15000)},
		{Seat: domain.SeatRef{Class: domain.ClassEconomy, Row: 1, Column: "A"}, Taken: false, PriceCents: price(15000)},
		{Seat: domain.SeatRef{Class: domain.ClassBusiness, Row: 1, Column: "A"}, Taken: false, PriceCents: price(45000)},
	}
	mockRepo.On("SeatMap", ctx, "F7").Return(seatRows, nil).Once()

	groups, err := service.Build(ctx, "F7")

	assert.NoError(t, err)
	assert.Len(t, groups, 2)

	assert.Equal(t, domain.ClassBusiness, groups[0].Class)
	assert.Equal(t, int64(45000), groups[0].PriceCents)
	assert.Equal(t, []int{1}, groups[0].Rows)
	assert.Equal(t, []string{"A"}, groups[0].Columns)

	economy := groups[1]
	assert.Equal(t, domain.ClassEconomy, economy.Class)
	assert.Equal(t, []int{1, 2}, economy.Rows)
	assert.Equal(t, []string{"A", "B"}, economy.Columns)
	assert.Equal(t, SeatTaken, economy.Grid[1]["B"])
	assert.Equal(t, SeatAvailable, economy.Grid[1]["A"])
	assert.Equal(t, SeatAvailable, economy.Grid[2]["A"])

	mockRepo.AssertExpectations(t)
}

func TestBuild_FlightNotFound(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	mockRepo.On("SeatMap", ctx, "F404").Return([]repository.SeatMapRow{}, nil).Once()

	groups, err := service.Build(ctx, "F404")

	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	assert.Nil(t, groups)
	mockRepo.AssertExpectations(t)
}

func TestGroup_MissingPriceDefaultsToZero(t *testing.T) {
	seatRows := []repository.SeatMapRow{
		{Seat: domain.SeatRef{Class: domain.ClassEconomy, Row: 1, Column: "A"}, Taken: false, PriceCents: nil},
	}

	groups := Group(seatRows)

	assert.Len(t, groups, 1)
	assert.Zero(t, groups[0].PriceCents)
}
