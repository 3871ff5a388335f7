package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeatMapRow is one seat of a flight's map with its resolved state. The
// derivation trusts an Active order linkage first and the flight_seats
// ledger second, so a drifted ledger row cannot hide a sold seat.
type SeatMapRow struct {
	Seat       domain.SeatRef
	Taken      bool
	PriceCents *int64
}

type FlightRepository interface {
	NextFlightNum(ctx context.Context) (string, error)
	Create(ctx context.Context, flight domain.Flight, crewIDs []int64, prices []domain.ClassPrice) error
	GetByNum(ctx context.Context, num string) (*domain.Flight, error)
	List(ctx context.Context, status domain.FlightStatus) ([]domain.Flight, error)
	Airports(ctx context.Context) ([]string, error)
	RouteExists(ctx context.Context, origin, destination string) (bool, error)
	RouteDuration(ctx context.Context, origin, destination string) (time.Duration, error)
	AvailableDates(ctx context.Context, origin, destination string, after time.Time) ([]string, error)
	FlightsOn(ctx context.Context, date, origin, destination string) ([]domain.Flight, error)
	CountAvailableSeats(ctx context.Context, num string) (int, error)
	SeatMap(ctx context.Context, num string) ([]SeatMapRow, error)
	CancelFlight(ctx context.Context, num string) (int64, error)
	SweepLanded(ctx context.Context, now time.Time) (int64, error)
	MarkFullyBooked(ctx context.Context) (int64, error)
	ReactivateFullyBooked(ctx context.Context) (int64, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `flight_num, origin, destination, departure_time, arrival_time, aircraft_id, status, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.Num, &f.Origin, &f.Destination, &f.Departure, &f.Arrival,
		&f.AircraftID, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanFlights(rows pgx.Rows) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

// NextFlightNum generates the next "F{n}" flight number.
func (r *PGFlightRepository) NextFlightNum(ctx context.Context) (string, error) {
	var max int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(flight_num FROM 2) AS BIGINT)), 0)
		FROM flights
		WHERE flight_num LIKE 'F%'`).Scan(&max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("F%d", max+1), nil
}

// Create inserts the flight with its crew assignments, the seat ledger copied
// from the aircraft's seat positions, and the per-class prices, all in one
// transaction. Aircraft and crew availability are re-validated here so a
// stale availability read cannot double-book either.
func (r *PGFlightRepository) Create(ctx context.Context, flight domain.Flight, crewIDs []int64, prices []domain.ClassPrice) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var taken bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM flights WHERE flight_num=$1)`, flight.Num).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return domain.ErrFlightNumberTaken
	}

	var aircraftBusy bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM flights f
			WHERE f.aircraft_id = $1
			  AND f.status <> 'cancelled'
			  AND f.departure_time < $3
			  AND $2 < f.arrival_time)`,
		flight.AircraftID, flight.Departure, flight.Arrival).Scan(&aircraftBusy); err != nil {
		return err
	}
	if aircraftBusy {
		return domain.ErrNoAircraftAvailable
	}

	var crewBusy int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(DISTINCT ca.worker_id)
		FROM crew_assignments ca
		JOIN flights f ON f.flight_num = ca.flight_num
		WHERE ca.worker_id = ANY($1)
		  AND f.status <> 'cancelled'
		  AND f.departure_time < $3
		  AND $2 < f.arrival_time`,
		crewIDs, flight.Departure, flight.Arrival).Scan(&crewBusy); err != nil {
		return err
	}
	if crewBusy > 0 {
		return domain.ErrInsufficientCrew
	}

	if _, err := tx.Exec(ctx, `INSERT INTO flights (flight_num, origin, destination, departure_time, arrival_time, aircraft_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		flight.Num, flight.Origin, flight.Destination, flight.Departure, flight.Arrival,
		flight.AircraftID, flight.Status); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, workerID := range crewIDs {
		batch.Queue(`INSERT INTO crew_assignments (flight_num, worker_id) VALUES ($1, $2)`, flight.Num, workerID)
	}
	for _, price := range prices {
		batch.Queue(`INSERT INTO flight_class_prices (flight_num, aircraft_id, class_type, price_cents) VALUES ($1, $2, $3, $4)`,
			flight.Num, flight.AircraftID, price.Class, price.PriceCents)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO flight_seats (flight_num, aircraft_id, class_type, row_num, col_letter, status)
		SELECT $1, sp.aircraft_id, sp.class_type, sp.row_num, sp.col_letter, 'available'
		FROM seat_positions sp
		WHERE sp.aircraft_id = $2`, flight.Num, flight.AircraftID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGFlightRepository) GetByNum(ctx context.Context, num string) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_num=$1`, num))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	return f, err
}

func (r *PGFlightRepository) List(ctx context.Context, status domain.FlightStatus) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+flightColumns+`
		FROM flights
		WHERE ($1 = '' OR status = $1)
		ORDER BY departure_time`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlights(rows)
}

func (r *PGFlightRepository) Airports(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT airport FROM (
			SELECT origin AS airport FROM routes
			UNION
			SELECT destination AS airport FROM routes
		) t
		ORDER BY airport`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airports := make([]string, 0)
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

func (r *PGFlightRepository) RouteExists(ctx context.Context, origin, destination string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM routes
			WHERE (origin = $1 AND destination = $2)
			   OR (origin = $2 AND destination = $1))`, origin, destination).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) RouteDuration(ctx context.Context, origin, destination string) (time.Duration, error) {
	var minutes int
	err := r.db.QueryRow(ctx, `
		SELECT duration_minutes FROM routes
		WHERE (origin = $1 AND destination = $2)
		   OR (origin = $2 AND destination = $1)
		LIMIT 1`, origin, destination).Scan(&minutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrRouteNotFound
	}
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

func (r *PGFlightRepository) AvailableDates(ctx context.Context, origin, destination string, after time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT departure_time::date
		FROM flights
		WHERE status IN ('active', 'delayed')
		  AND departure_time > $3
		  AND ((origin = $1 AND destination = $2) OR (origin = $2 AND destination = $1))
		ORDER BY departure_time::date`, origin, destination, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, rows.Err()
}

func (r *PGFlightRepository) FlightsOn(ctx context.Context, date, origin, destination string) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+flightColumns+`
		FROM flights
		WHERE status IN ('active', 'delayed')
		  AND departure_time::date = $1::date
		  AND ((origin = $2 AND destination = $3) OR (origin = $3 AND destination = $2))
		ORDER BY departure_time`, date, origin, destination)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlights(rows)
}

func (r *PGFlightRepository) CountAvailableSeats(ctx context.Context, num string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM flight_seats
		WHERE flight_num = $1 AND status = 'available'`, num).Scan(&count)
	return count, err
}

func (r *PGFlightRepository) SeatMap(ctx context.Context, num string) ([]SeatMapRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sp.class_type, sp.row_num, sp.col_letter,
		       CASE
		         WHEN os.order_id IS NOT NULL AND o.status = 'Active' THEN true
		         WHEN fs.status = 'available' THEN false
		         ELSE true
		       END AS taken,
		       fcp.price_cents
		FROM flights f
		JOIN seat_positions sp ON sp.aircraft_id = f.aircraft_id
		LEFT JOIN flight_seats fs
		  ON fs.flight_num = f.flight_num
		 AND fs.class_type = sp.class_type
		 AND fs.row_num = sp.row_num
		 AND fs.col_letter = sp.col_letter
		LEFT JOIN order_seats os
		  ON os.flight_num = f.flight_num
		 AND os.class_type = sp.class_type
		 AND os.row_num = sp.row_num
		 AND os.col_letter = sp.col_letter
		LEFT JOIN orders o ON o.id = os.order_id
		LEFT JOIN flight_class_prices fcp
		  ON fcp.flight_num = f.flight_num
		 AND fcp.class_type = sp.class_type
		WHERE f.flight_num = $1
		ORDER BY CASE sp.class_type WHEN 'Business' THEN 0 WHEN 'Economy' THEN 1 ELSE 2 END,
		         sp.row_num, sp.col_letter`, num)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatRows := make([]SeatMapRow, 0)
	for rows.Next() {
		var sr SeatMapRow
		if err := rows.Scan(&sr.Seat.Class, &sr.Seat.Row, &sr.Seat.Column, &sr.Taken, &sr.PriceCents); err != nil {
			return nil, err
		}
		seatRows = append(seatRows, sr)
	}
	return seatRows, rows.Err()
}

// CancelFlight marks the flight cancelled, flips its Active orders to system
// cancellation with nothing charged, and drops their seat rows. Flight seats
// are left as they are: the flight is dead and never re-enters the
// availability-based status flips. Returns the number of cancelled orders;
// a repeat call matches no Active orders and is a no-op.
func (r *PGFlightRepository) CancelFlight(ctx context.Context, num string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE orders SET total_paid_cents = 0, cancellation_fee_cents = 0, status = 'system cancellation'
		WHERE flight_num = $1 AND status = 'Active'`, num)
	if err != nil {
		return 0, err
	}
	cancelled := cmd.RowsAffected()

	if _, err := tx.Exec(ctx, `UPDATE flights SET status = 'cancelled', updated_at = now() WHERE flight_num = $1`, num); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_seats WHERE flight_num = $1`, num); err != nil {
		return 0, err
	}

	return cancelled, tx.Commit(ctx)
}

// SweepLanded marks every non-cancelled flight whose arrival has passed as
// landed and completes its Active orders.
func (r *PGFlightRepository) SweepLanded(ctx context.Context, now time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		UPDATE flights SET status = 'landed', updated_at = now()
		WHERE status NOT IN ('cancelled', 'landed')
		  AND arrival_time <= $1
		RETURNING flight_num`, now)
	if err != nil {
		return 0, err
	}
	landed := make([]string, 0)
	for rows.Next() {
		var num string
		if err := rows.Scan(&num); err != nil {
			rows.Close()
			return 0, err
		}
		landed = append(landed, num)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(landed) > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE orders SET status = 'completed'
			WHERE flight_num = ANY($1) AND status = 'Active'`, landed); err != nil {
			return 0, err
		}
	}

	return int64(len(landed)), tx.Commit(ctx)
}

func (r *PGFlightRepository) MarkFullyBooked(ctx context.Context) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE flights f SET status = 'fully booked', updated_at = now()
		WHERE f.status NOT IN ('cancelled', 'landed', 'fully booked')
		  AND NOT EXISTS (
			SELECT 1 FROM flight_seats fs
			WHERE fs.flight_num = f.flight_num AND fs.status = 'available')`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *PGFlightRepository) ReactivateFullyBooked(ctx context.Context) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE flights f SET status = 'active', updated_at = now()
		WHERE f.status = 'fully booked'
		  AND EXISTS (
			SELECT 1 FROM flight_seats fs
			WHERE fs.flight_num = f.flight_num AND fs.status = 'available')`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
