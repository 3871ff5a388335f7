package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/service/flights"
	"github.com/Domenick1991/flytau/internal/service/seatmap"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
	seats   seatmap.SeatMapUseCase
}

type createFlightRequest struct {
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	Departure   time.Time           `json:"departure"`
	AircraftID  int64               `json:"aircraft_id"`
	CrewIDs     []int64             `json:"crew_ids"`
	Prices      []domain.ClassPrice `json:"prices"`
}

type flightResponse struct {
	Num         string `json:"flight_num"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Departure   string `json:"departure"`
	Arrival     string `json:"arrival"`
	AircraftID  int64  `json:"aircraft_id"`
	Status      string `json:"status"`
}

func NewFlightHandler(service flights.FlightUseCase, seats seatmap.SeatMapUseCase) *FlightHandler {
	return &FlightHandler{service: service, seats: seats}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/airports", h.airports)
	router.GET("/dates", h.dates)
	router.GET("/search", h.search)
	router.GET("/flights", h.list)
	router.GET("/flights/:num", h.get)
	router.GET("/flights/:num/seats", h.seatMap)
	router.POST("/flights", h.create)
	router.DELETE("/flights/:num", h.cancel)
}

func (h *FlightHandler) airports(c *gin.Context) {
	airports, err := h.service.Airports(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"airports": airports})
}

func (h *FlightHandler) dates(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	if origin == "" || destination == "" {
		badRequest(c, "origin and destination are required")
		return
	}

	dates, err := h.service.AvailableDates(c.Request.Context(), origin, destination)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

func (h *FlightHandler) search(c *gin.Context) {
	date := c.Query("date")
	origin := c.Query("origin")
	destination := c.Query("destination")
	if date == "" || origin == "" || destination == "" {
		badRequest(c, "date, origin and destination are required")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	options, err := h.service.Search(c.Request.Context(), date, origin, destination)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flights": options})
}

func (h *FlightHandler) list(c *gin.Context) {
	status := domain.FlightStatus(c.Query("status"))
	found, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]flightResponse, 0, len(found))
	for _, flight := range found {
		responses = append(responses, toFlightResponse(&flight))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.Get(c.Request.Context(), c.Param("num"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) seatMap(c *gin.Context) {
	groups, err := h.seats.Build(c.Request.Context(), c.Param("num"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": groups})
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	flight, err := h.service.Create(c.Request.Context(), flights.CreateFlightInput{
		Origin:      req.Origin,
		Destination: req.Destination,
		Departure:   req.Departure,
		AircraftID:  req.AircraftID,
		CrewIDs:     req.CrewIDs,
		Prices:      req.Prices,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.Cancel(c.Request.Context(), c.Param("num"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled_orders": cancelled})
}

func toFlightResponse(flight *domain.Flight) flightResponse {
	return flightResponse{
		Num:         flight.Num,
		Origin:      flight.Origin,
		Destination: flight.Destination,
		Departure:   flight.Departure.Format(time.RFC3339),
		Arrival:     flight.Arrival.Format(time.RFC3339),
		AircraftID:  flight.AircraftID,
		Status:      string(flight.Status),
	}
}
