package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createOrderRequest struct {
	FlightNum  string           `json:"flight_num"`
	Email      string           `json:"email"`
	Guest      *domain.Guest    `json:"guest"`
	Passengers int              `json:"passengers"`
	Seats      []domain.SeatRef `json:"seats"`
}

type orderResponse struct {
	ID                   int64            `json:"id"`
	Reference            string           `json:"reference"`
	Email                string           `json:"email"`
	FlightNum            string           `json:"flight_num"`
	OrderDate            string           `json:"order_date"`
	Status               string           `json:"status"`
	TotalPaidCents       int64            `json:"total_paid_cents"`
	CancellationFeeCents int64            `json:"cancellation_fee_cents"`
	Seats                []orderSeatEntry `json:"seats,omitempty"`
}

type orderSeatEntry struct {
	Seat       domain.SeatRef `json:"seat"`
	PriceCents int64          `json:"price_cents"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/orders", h.create)
	router.GET("/orders", h.list)
	router.GET("/orders/:id", h.get)
	router.DELETE("/orders/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.service.Book(c.Request.Context(), booking.BookInput{
		FlightNum:  req.FlightNum,
		Email:      req.Email,
		Guest:      req.Guest,
		Passengers: req.Passengers,
		Seats:      req.Seats,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order, nil))
}

func (h *BookingHandler) list(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		badRequest(c, "email is required")
		return
	}

	orders, err := h.service.ListOrders(c.Request.Context(), email)
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]orderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, toOrderResponse(&orders[i], nil))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, email, ok := h.orderParams(c)
	if !ok {
		return
	}

	order, seats, err := h.service.GetOrder(c.Request.Context(), id, email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, seats))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, email, ok := h.orderParams(c)
	if !ok {
		return
	}

	order, err := h.service.CancelOrder(c.Request.Context(), id, email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, nil))
}

// orderParams pulls the order id from the path and the owner email from the
// query. Orders are only addressable together with the owning email.
func (h *BookingHandler) orderParams(c *gin.Context) (int64, string, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return 0, "", false
	}
	email := c.Query("email")
	if email == "" {
		badRequest(c, "email is required")
		return 0, "", false
	}
	return id, email, true
}

func toOrderResponse(order *domain.Order, seats []domain.OrderSeat) orderResponse {
	resp := orderResponse{
		ID:                   order.ID,
		Reference:            order.Reference,
		Email:                order.Email,
		FlightNum:            order.FlightNum,
		OrderDate:            order.OrderDate.Format(time.RFC3339),
		Status:               string(order.Status),
		TotalPaidCents:       order.TotalPaidCents,
		CancellationFeeCents: order.CancellationFeeCents,
	}
	for _, seat := range seats {
		resp.Seats = append(resp.Seats, orderSeatEntry{Seat: seat.Seat, PriceCents: seat.PriceCents})
	}
	return resp
}
