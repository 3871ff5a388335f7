package repository

import (
	"context"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MonthlyCancellationRate struct {
	Month       string  `json:"month"`
	RatePercent float64 `json:"rate_percent"`
}

type PlaneRevenue struct {
	Manufacturer string            `json:"manufacturer"`
	Size         domain.PlaneSize  `json:"size"`
	Class        domain.CabinClass `json:"class"`
	RevenueCents int64             `json:"revenue_cents"`
}

type AircraftActivity struct {
	AircraftID         int64   `json:"aircraft_id"`
	Month              string  `json:"month"`
	FlightsDone        int     `json:"flights_done"`
	FlightsCancelled   int     `json:"flights_cancelled"`
	UtilizationPercent float64 `json:"utilization_percent"`
	DominantRoute      string  `json:"dominant_route"`
}

type ReportRepository interface {
	CancellationRateByMonth(ctx context.Context) ([]MonthlyCancellationRate, error)
	RevenueByPlane(ctx context.Context) ([]PlaneRevenue, error)
	AircraftMonthlyActivity(ctx context.Context) ([]AircraftActivity, error)
}

type PGReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) ReportRepository {
	return &PGReportRepository{db: db}
}

func (r *PGReportRepository) CancellationRateByMonth(ctx context.Context) ([]MonthlyCancellationRate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(order_date, 'YYYY-MM') AS month,
		       ROUND(100.0 * SUM(CASE WHEN status = 'customer cancellation' THEN 1 ELSE 0 END) / COUNT(*), 2)
		FROM orders
		GROUP BY 1
		ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := make([]MonthlyCancellationRate, 0)
	for rows.Next() {
		var m MonthlyCancellationRate
		if err := rows.Scan(&m.Month, &m.RatePercent); err != nil {
			return nil, err
		}
		rates = append(rates, m)
	}
	return rates, rows.Err()
}

func (r *PGReportRepository) RevenueByPlane(ctx context.Context) ([]PlaneRevenue, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.manufacturer, a.size, c.class_type, COALESCE(SUM(os.price_cents), 0)
		FROM aircraft a
		CROSS JOIN (VALUES ('Economy'), ('Business')) AS c(class_type)
		LEFT JOIN order_seats os
		  ON os.aircraft_id = a.id AND os.class_type = c.class_type
		WHERE NOT (a.size = 'Small' AND c.class_type = 'Business')
		GROUP BY a.manufacturer, a.size, c.class_type
		ORDER BY a.manufacturer, a.size, c.class_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revenue := make([]PlaneRevenue, 0)
	for rows.Next() {
		var p PlaneRevenue
		if err := rows.Scan(&p.Manufacturer, &p.Size, &p.Class, &p.RevenueCents); err != nil {
			return nil, err
		}
		revenue = append(revenue, p)
	}
	return revenue, rows.Err()
}

func (r *PGReportRepository) AircraftMonthlyActivity(ctx context.Context) ([]AircraftActivity, error) {
	rows, err := r.db.Query(ctx, `
		WITH flight_base AS (
			SELECT aircraft_id,
			       to_char(departure_time, 'YYYY-MM') AS ym,
			       departure_time::date AS flight_date,
			       status, origin, destination
			FROM flights
		),
		route_rank AS (
			SELECT aircraft_id, ym, origin, destination,
			       ROW_NUMBER() OVER (
			           PARTITION BY aircraft_id, ym
			           ORDER BY COUNT(*) DESC, origin, destination
			       ) AS rn
			FROM flight_base
			GROUP BY aircraft_id, ym, origin, destination
		),
		monthly AS (
			SELECT aircraft_id, ym,
			       SUM(CASE WHEN status <> 'cancelled' THEN 1 ELSE 0 END) AS flights_done,
			       SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END) AS flights_cancelled,
			       COUNT(DISTINCT CASE WHEN status <> 'cancelled' THEN flight_date END) AS active_days
			FROM flight_base
			GROUP BY aircraft_id, ym
		)
		SELECT m.aircraft_id, m.ym, m.flights_done, m.flights_cancelled,
		       ROUND(100.0 * m.active_days / 30, 2),
		       COALESCE(r.origin || '-' || r.destination, '')
		FROM monthly m
		LEFT JOIN route_rank r
		  ON r.aircraft_id = m.aircraft_id AND r.ym = m.ym AND r.rn = 1
		ORDER BY m.aircraft_id, m.ym`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := make([]AircraftActivity, 0)
	for rows.Next() {
		var a AircraftActivity
		if err := rows.Scan(&a.AircraftID, &a.Month, &a.FlightsDone, &a.FlightsCancelled,
			&a.UtilizationPercent, &a.DominantRoute); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

var _ ReportRepository = (*PGReportRepository)(nil)
