package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for the booking engine.
type Metrics struct {
	OrdersCreated    prometheus.Counter
	OrdersCancelled  prometheus.Counter
	FlightsCancelled prometheus.Counter
	SweepRuns        prometheus.Counter
	SweepFailures    prometheus.Counter
	BookingErrors    *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "The total number of confirmed orders",
		}),
		OrdersCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "The total number of customer cancellations",
		}),
		FlightsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_cancelled_total",
			Help:      "The total number of manager flight cancellations",
		}),
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_sweep_runs_total",
			Help:      "The total number of lifecycle maintenance sweeps",
		}),
		SweepFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_sweep_failures_total",
			Help:      "The total number of failed lifecycle maintenance sweeps",
		}),
		BookingErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_errors_total",
			Help:      "The total number of rejected bookings",
		}, []string{"reason"}),
	}
}
