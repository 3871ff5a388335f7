package flights

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/flytau/internal/repository"
	"github.com/Domenick1991/flytau/pkg/logger"
	"github.com/Domenick1991/flytau/pkg/metrics"
)

// Maintainer runs the flight lifecycle sweep: land overdue flights and
// complete their orders, then reconcile the fully-booked flag both ways.
// The throttle state is explicit so request-path piggybacking stays cheap.
type Maintainer struct {
	flights  repository.FlightRepository
	interval time.Duration
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

type MaintainerOption func(*Maintainer)

func WithMaintainerMetrics(m *metrics.Metrics) MaintainerOption {
	return func(mt *Maintainer) {
		mt.metrics = m
	}
}

func WithMaintainerClock(now func() time.Time) MaintainerOption {
	return func(mt *Maintainer) {
		mt.now = now
	}
}

func NewMaintainer(flights repository.FlightRepository, interval time.Duration, log logger.Logger, opts ...MaintainerOption) *Maintainer {
	maintainer := &Maintainer{
		flights:  flights,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(maintainer)
	}
	return maintainer
}

// MaybeSweep runs the sweep at most once per interval. Errors are logged and
// swallowed; the next call retries. Safe for concurrent callers.
func (m *Maintainer) MaybeSweep(ctx context.Context) {
	m.mu.Lock()
	now := m.now()
	if now.Sub(m.lastRun) < m.interval {
		m.mu.Unlock()
		return
	}
	m.lastRun = now
	m.mu.Unlock()

	if err := m.Sweep(ctx); err != nil {
		m.log.Error("lifecycle sweep failed", "error", err)
	}
}

// Sweep applies the lifecycle transitions in order: land and complete first,
// so a flight that just landed is not also flipped fully booked.
func (m *Maintainer) Sweep(ctx context.Context) error {
	if m.metrics != nil {
		m.metrics.SweepRuns.Inc()
	}

	landed, err := m.flights.SweepLanded(ctx, m.now())
	if err != nil {
		return m.fail(err)
	}
	full, err := m.flights.MarkFullyBooked(ctx)
	if err != nil {
		return m.fail(err)
	}
	reopened, err := m.flights.ReactivateFullyBooked(ctx)
	if err != nil {
		return m.fail(err)
	}

	if landed > 0 || full > 0 || reopened > 0 {
		m.log.Info("lifecycle sweep applied", "landed", landed, "fully_booked", full, "reopened", reopened)
	}
	return nil
}

func (m *Maintainer) fail(err error) error {
	if m.metrics != nil {
		m.metrics.SweepFailures.Inc()
	}
	return err
}
