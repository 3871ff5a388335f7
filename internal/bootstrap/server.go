package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flytau/api"
	"github.com/Domenick1991/flytau/config"
	"github.com/Domenick1991/flytau/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the HTTP handlers mounted by Run.
type Handlers struct {
	Flights  *api.FlightHandler
	Bookings *api.BookingHandler
	Fleet    *api.FleetHandler
	Reports  *api.ReportHandler
}

// Run starts the HTTP server and blocks until context is canceled or the
// server fails. Every request piggybacks a throttled lifecycle sweep, so the
// status flips stay fresh even without the worker running.
func Run(ctx context.Context, cfg *config.Config, handlers Handlers, maintainer *flights.Maintainer) error {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if maintainer != nil {
		engine.Use(func(c *gin.Context) {
			go maintainer.MaybeSweep(context.WithoutCancel(c.Request.Context()))
			c.Next()
		})
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")
	handlers.Flights.Register(v1)
	handlers.Bookings.Register(v1)
	handlers.Fleet.Register(v1)
	handlers.Reports.Register(v1)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
