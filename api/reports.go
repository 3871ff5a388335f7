package api

import (
	"net/http"

	"github.com/Domenick1991/flytau/internal/service/reports"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service reports.ReportUseCase
}

func NewReportHandler(service reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Register(router *gin.RouterGroup) {
	router.GET("/reports/cancellations", h.cancellations)
	router.GET("/reports/revenue", h.revenue)
	router.GET("/reports/activity", h.activity)
}

func (h *ReportHandler) cancellations(c *gin.Context) {
	report, err := h.service.CancellationRates(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) revenue(c *gin.Context) {
	revenue, err := h.service.RevenueByPlane(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revenue": revenue})
}

func (h *ReportHandler) activity(c *gin.Context) {
	activity, err := h.service.AircraftActivity(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": activity})
}
