package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/Domenick1991/flytau/internal/service/flights"
	"github.com/Domenick1991/flytau/internal/service/schedule"
	"github.com/gin-gonic/gin"
)

// FleetHandler serves the manager-side fleet and crew endpoints.
type FleetHandler struct {
	flights  flights.FlightUseCase
	schedule schedule.ScheduleUseCase
}

type createAircraftRequest struct {
	Manufacturer string    `json:"manufacturer"`
	Size         string    `json:"size"`
	PurchaseDate time.Time `json:"purchase_date"`
	EconomyRows  int       `json:"economy_rows"`
	EconomyCols  int       `json:"economy_cols"`
	BusinessRows int       `json:"business_rows"`
	BusinessCols int       `json:"business_cols"`
}

type createWorkerRequest struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Phone             string    `json:"phone"`
	City              string    `json:"city"`
	Street            string    `json:"street"`
	HouseNum          int       `json:"house_num"`
	StartDate         time.Time `json:"start_date"`
	Role              string    `json:"role"`
	LongHaulCertified bool      `json:"long_haul_certified"`
}

func NewFleetHandler(flightService flights.FlightUseCase, scheduleService schedule.ScheduleUseCase) *FleetHandler {
	return &FleetHandler{flights: flightService, schedule: scheduleService}
}

func (h *FleetHandler) Register(router *gin.RouterGroup) {
	router.POST("/aircraft", h.createAircraft)
	router.GET("/aircraft/free", h.freeAircraft)
	router.POST("/workers", h.createWorker)
	router.GET("/crew/available", h.availableCrew)
}

func (h *FleetHandler) createAircraft(c *gin.Context) {
	var req createAircraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := h.flights.CreateAircraft(c.Request.Context(), domain.AircraftLayout{
		Manufacturer: req.Manufacturer,
		Size:         domain.PlaneSize(req.Size),
		PurchaseDate: req.PurchaseDate,
		EconomyRows:  req.EconomyRows,
		EconomyCols:  req.EconomyCols,
		BusinessRows: req.BusinessRows,
		BusinessCols: req.BusinessCols,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *FleetHandler) freeAircraft(c *gin.Context) {
	departure, arrival, ok := windowParams(c)
	if !ok {
		return
	}

	free, err := h.schedule.FreeAircraft(c.Request.Context(), departure, arrival)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"aircraft": free})
}

func (h *FleetHandler) createWorker(c *gin.Context) {
	var req createWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	err := h.flights.CreateWorker(c.Request.Context(), domain.Worker{
		ID:                req.ID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		City:              req.City,
		Street:            req.Street,
		HouseNum:          req.HouseNum,
		StartDate:         req.StartDate,
		Role:              domain.WorkerRole(req.Role),
		LongHaulCertified: req.LongHaulCertified,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": req.ID})
}

func (h *FleetHandler) availableCrew(c *gin.Context) {
	departure, arrival, ok := windowParams(c)
	if !ok {
		return
	}
	role := domain.WorkerRole(c.Query("role"))
	origin := c.Query("origin")
	if origin == "" {
		badRequest(c, "origin is required")
		return
	}

	workers, err := h.schedule.AvailableCrew(c.Request.Context(), role, departure, arrival, origin)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": workers})
}

func windowParams(c *gin.Context) (time.Time, time.Time, bool) {
	departure, err := time.Parse(time.RFC3339, c.Query("departure"))
	if err != nil {
		badRequest(c, "departure must be RFC3339")
		return time.Time{}, time.Time{}, false
	}
	arrival, err := time.Parse(time.RFC3339, c.Query("arrival"))
	if err != nil {
		badRequest(c, "arrival must be RFC3339")
		return time.Time{}, time.Time{}, false
	}
	return departure, arrival, true
}
