package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Book(ctx context.Context, input booking.BookInput) (*domain.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockBookingUseCase) CancelOrder(ctx context.Context, orderID int64, email string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockBookingUseCase) GetOrder(ctx context.Context, orderID int64, email string) (*domain.Order, []domain.OrderSeat, error) {
	args := m.Called(ctx, orderID, email)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Order), args.Get(1).([]domain.OrderSeat), args.Error(2)
}

func (m *MockBookingUseCase) ListOrders(ctx context.Context, email string) ([]domain.Order, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := createOrderRequest{
		FlightNum: "F12",
		Email:     "test@example.com",
		Seats: []domain.SeatRef{
			{Class: domain.ClassEconomy, Row: 12, Column: "A"},
		},
	}
	body, _ := json.Marshal(req)
	c.Request = httptest.NewRequest("POST", "/orders", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	order := &domain.Order{
		ID:             41,
		Reference:      "ref123",
		Email:          "test@example.com",
		FlightNum:      "F12",
		Status:         domain.OrderStatusActive,
		TotalPaidCents: 15000,
	}

	mockService.On("Book", c.Request.Context(), booking.BookInput{
		FlightNum: "F12",
		Email:     "test@example.com",
		Seats:     req.Seats,
	}).Return(order, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response orderResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "ref123", response.Reference)
	assert.Equal(t, string(domain.OrderStatusActive), response.Status)
	assert.Equal(t, int64(15000), response.TotalPaidCents)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_seatUnavailable(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := createOrderRequest{
		FlightNum: "F12",
		Email:     "test@example.com",
		Seats:     []domain.SeatRef{{Class: domain.ClassEconomy, Row: 12, Column: "A"}},
	}
	body, _ := json.Marshal(req)
	c.Request = httptest.NewRequest("POST", "/orders", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Book", c.Request.Context(), mock.Anything).
		Return(nil, &domain.SeatUnavailableError{FlightNum: "F12", Seats: req.Seats})

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "41"}}
	c.Request = httptest.NewRequest("GET", "/orders/41?email=test@example.com", nil)

	order := &domain.Order{ID: 41, Email: "test@example.com", FlightNum: "F12", Status: domain.OrderStatusActive}
	seats := []domain.OrderSeat{
		{OrderID: 41, FlightNum: "F12", Seat: domain.SeatRef{Class: domain.ClassEconomy, Row: 12, Column: "A"}, PriceCents: 15000},
	}
	mockService.On("GetOrder", c.Request.Context(), int64(41), "test@example.com").Return(order, seats, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response orderResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Seats, 1)
	assert.Equal(t, int64(15000), response.Seats[0].PriceCents)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_missingEmail(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "41"}}
	c.Request = httptest.NewRequest("GET", "/orders/41", nil)

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "41"}}
	c.Request = httptest.NewRequest("DELETE", "/orders/41?email=test@example.com", nil)

	order := &domain.Order{
		ID:                   41,
		Email:                "test@example.com",
		FlightNum:            "F12",
		Status:               domain.OrderStatusCustomerCancel,
		TotalPaidCents:       15000,
		CancellationFeeCents: 0,
	}
	mockService.On("CancelOrder", c.Request.Context(), int64(41), "test@example.com").Return(order, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response orderResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.OrderStatusCustomerCancel), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_windowClosed(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "41"}}
	c.Request = httptest.NewRequest("DELETE", "/orders/41?email=test@example.com", nil)

	mockService.On("CancelOrder", c.Request.Context(), int64(41), "test@example.com").
		Return(nil, domain.ErrCancellationWindowClosed)

	handler.cancel(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/orders?email=test@example.com", nil)

	orders := []domain.Order{
		{ID: 41, Email: "test@example.com", Status: domain.OrderStatusActive},
		{ID: 42, Email: "test@example.com", Status: domain.OrderStatusCompleted},
	}
	mockService.On("ListOrders", c.Request.Context(), "test@example.com").Return(orders, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []orderResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 2)

	mockService.AssertExpectations(t)
}
