package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to HTTP statuses; anything unknown is a 500
// with a generic body so storage details never leak to clients.
func writeError(c *gin.Context, err error) {
	var seatNotFound *domain.SeatNotFoundError
	var seatUnavailable *domain.SeatUnavailableError
	var priceMissing *domain.PriceMissingError
	var validation *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrRouteNotFound),
		errors.Is(err, domain.ErrNoFlightsOnDate):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &seatUnavailable),
		errors.Is(err, domain.ErrCancellationWindowClosed),
		errors.Is(err, domain.ErrFlightNumberTaken),
		errors.Is(err, domain.ErrWorkerIDTaken),
		errors.Is(err, domain.ErrNoAircraftAvailable),
		errors.Is(err, domain.ErrInsufficientCrew):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &seatNotFound),
		errors.As(err, &priceMissing),
		errors.As(err, &validation),
		errors.Is(err, domain.ErrSeatCountMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
