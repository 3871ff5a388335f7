package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRecord carries one booking request into the transaction.
type BookingRecord struct {
	FlightNum string
	Email     string
	Guest     *domain.Guest
	Seats     []domain.SeatRef
	Reference string
	OrderDate time.Time
}

type OrderRepository interface {
	BookSeats(ctx context.Context, rec BookingRecord) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID int64, email string, now time.Time) (*domain.Order, bool, error)
	GetForCustomer(ctx context.Context, orderID int64, email string) (*domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
	Seats(ctx context.Context, orderID int64) ([]domain.OrderSeat, error)
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

func seatArrays(seats []domain.SeatRef) (classes []string, rowNums []int32, cols []string) {
	classes = make([]string, 0, len(seats))
	rowNums = make([]int32, 0, len(seats))
	cols = make([]string, 0, len(seats))
	for _, s := range seats {
		classes = append(classes, string(s.Class))
		rowNums = append(rowNums, int32(s.Row))
		cols = append(cols, s.Column)
	}
	return classes, rowNums, cols
}

// BookSeats runs the whole booking as one transaction: resolve and row-lock
// the requested ledger rows, re-check availability under the lock, price the
// selection, upsert a guest buyer, insert the order and its seats, flip the
// ledger, and mark the flight fully booked when the last seat goes. Either
// everything commits or nothing is visible.
func (r *PGOrderRepository) BookSeats(ctx context.Context, rec BookingRecord) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var aircraftID int64
	if err := tx.QueryRow(ctx, `SELECT aircraft_id FROM flights WHERE flight_num=$1`, rec.FlightNum).Scan(&aircraftID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}

	classes, rowNums, cols := seatArrays(rec.Seats)

	// Lock the requested ledger rows; concurrent bookings for the same seat
	// serialize here and the loser sees status='taken'.
	rows, err := tx.Query(ctx, `
		SELECT fs.class_type, fs.row_num, fs.col_letter, fs.status
		FROM flight_seats fs
		JOIN unnest($2::text[], $3::int4[], $4::text[]) AS req(class_type, row_num, col_letter)
		  ON fs.class_type = req.class_type
		 AND fs.row_num = req.row_num
		 AND fs.col_letter = req.col_letter
		WHERE fs.flight_num = $1
		FOR UPDATE OF fs`, rec.FlightNum, classes, rowNums, cols)
	if err != nil {
		return nil, err
	}
	found := make(map[domain.SeatRef]domain.SeatStatus, len(rec.Seats))
	for rows.Next() {
		var seat domain.SeatRef
		var status domain.SeatStatus
		if err := rows.Scan(&seat.Class, &seat.Row, &seat.Column, &status); err != nil {
			rows.Close()
			return nil, err
		}
		found[seat] = status
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing, unavailable []domain.SeatRef
	for _, seat := range rec.Seats {
		status, ok := found[seat]
		switch {
		case !ok:
			missing = append(missing, seat)
		case status != domain.SeatStatusAvailable:
			unavailable = append(unavailable, seat)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SeatNotFoundError{FlightNum: rec.FlightNum, Seats: missing}
	}
	if len(unavailable) > 0 {
		return nil, &domain.SeatUnavailableError{FlightNum: rec.FlightNum, Seats: unavailable}
	}

	prices, err := classPrices(ctx, tx, rec.FlightNum)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, seat := range rec.Seats {
		price, ok := prices[seat.Class]
		if !ok {
			return nil, &domain.PriceMissingError{FlightNum: rec.FlightNum, Class: seat.Class}
		}
		total += price
	}

	email := rec.Email
	if rec.Guest != nil {
		email = rec.Guest.Email
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (email, first_name, last_name, phone)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE
			SET first_name = EXCLUDED.first_name,
			    last_name = EXCLUDED.last_name,
			    phone = EXCLUDED.phone`,
			rec.Guest.Email, rec.Guest.FirstName, rec.Guest.LastName, rec.Guest.Phone); err != nil {
			return nil, err
		}
	}

	order := &domain.Order{
		Reference:            rec.Reference,
		Email:                email,
		FlightNum:            rec.FlightNum,
		OrderDate:            rec.OrderDate,
		Status:               domain.OrderStatusActive,
		TotalPaidCents:       total,
		CancellationFeeCents: total,
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (reference, email, flight_num, order_date, status, total_paid_cents, cancellation_fee_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		order.Reference, order.Email, order.FlightNum, order.OrderDate, order.Status,
		order.TotalPaidCents, order.CancellationFeeCents).Scan(&order.ID); err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, seat := range rec.Seats {
		batch.Queue(`INSERT INTO order_seats (order_id, flight_num, aircraft_id, class_type, row_num, col_letter, price_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			order.ID, rec.FlightNum, aircraftID, seat.Class, seat.Row, seat.Column, prices[seat.Class])
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE flight_seats fs SET status = 'taken'
		FROM unnest($2::text[], $3::int4[], $4::text[]) AS req(class_type, row_num, col_letter)
		WHERE fs.flight_num = $1
		  AND fs.class_type = req.class_type
		  AND fs.row_num = req.row_num
		  AND fs.col_letter = req.col_letter`, rec.FlightNum, classes, rowNums, cols); err != nil {
		return nil, err
	}

	var available int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM flight_seats
		WHERE flight_num = $1 AND status = 'available'`, rec.FlightNum).Scan(&available); err != nil {
		return nil, err
	}
	if available == 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE flights SET status = 'fully booked', updated_at = now()
			WHERE flight_num = $1 AND status NOT IN ('cancelled', 'landed')`, rec.FlightNum); err != nil {
			return nil, err
		}
	}

	return order, tx.Commit(ctx)
}

func classPrices(ctx context.Context, tx pgx.Tx, flightNum string) (map[domain.CabinClass]int64, error) {
	rows, err := tx.Query(ctx, `SELECT class_type, price_cents FROM flight_class_prices WHERE flight_num=$1`, flightNum)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[domain.CabinClass]int64)
	for rows.Next() {
		var class domain.CabinClass
		var cents int64
		if err := rows.Scan(&class, &cents); err != nil {
			return nil, err
		}
		prices[class] = cents
	}
	return prices, rows.Err()
}

// CancelOrder reverses a customer booking: the held fee is forfeited as the
// final charge, seats return to available, and the order_seats rows go away.
// A second call finds the order no longer Active and reports released=false
// without touching anything.
func (r *PGOrderRepository) CancelOrder(ctx context.Context, orderID int64, email string, now time.Time) (*domain.Order, bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var order domain.Order
	var departure time.Time
	err = tx.QueryRow(ctx, `
		SELECT o.id, o.reference, o.email, o.flight_num, o.order_date, o.status,
		       o.total_paid_cents, o.cancellation_fee_cents, f.departure_time
		FROM orders o
		JOIN flights f ON f.flight_num = o.flight_num
		WHERE o.id = $1 AND o.email = $2
		FOR UPDATE OF o`, orderID, email).
		Scan(&order.ID, &order.Reference, &order.Email, &order.FlightNum, &order.OrderDate,
			&order.Status, &order.TotalPaidCents, &order.CancellationFeeCents, &departure)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, domain.ErrOrderNotFound
		}
		return nil, false, err
	}

	if order.Status != domain.OrderStatusActive {
		return &order, false, nil
	}
	if !domain.CanCancelOrder(order.Status, departure, now) {
		return nil, false, domain.ErrCancellationWindowClosed
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = 'customer cancellation',
		    total_paid_cents = cancellation_fee_cents,
		    cancellation_fee_cents = 0
		WHERE id = $1`, orderID); err != nil {
		return nil, false, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE flight_seats fs SET status = 'available'
		FROM order_seats os
		WHERE os.order_id = $1
		  AND os.flight_num = fs.flight_num
		  AND os.class_type = fs.class_type
		  AND os.row_num = fs.row_num
		  AND os.col_letter = fs.col_letter`, orderID); err != nil {
		return nil, false, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_seats WHERE order_id = $1`, orderID); err != nil {
		return nil, false, err
	}

	order.Status = domain.OrderStatusCustomerCancel
	order.TotalPaidCents = order.CancellationFeeCents
	order.CancellationFeeCents = 0
	return &order, true, tx.Commit(ctx)
}

const orderColumns = `id, reference, email, flight_num, order_date, status, total_paid_cents, cancellation_fee_cents`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.Reference, &o.Email, &o.FlightNum, &o.OrderDate,
		&o.Status, &o.TotalPaidCents, &o.CancellationFeeCents); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGOrderRepository) GetForCustomer(ctx context.Context, orderID int64, email string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND email=$2`, orderID, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	return o, err
}

func (r *PGOrderRepository) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE email=$1 ORDER BY order_date DESC, id DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *PGOrderRepository) Seats(ctx context.Context, orderID int64) ([]domain.OrderSeat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT order_id, flight_num, aircraft_id, class_type, row_num, col_letter, price_cents
		FROM order_seats
		WHERE order_id = $1
		ORDER BY class_type, row_num, col_letter`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.OrderSeat, 0)
	for rows.Next() {
		var s domain.OrderSeat
		if err := rows.Scan(&s.OrderID, &s.FlightNum, &s.AircraftID, &s.Seat.Class, &s.Seat.Row, &s.Seat.Column, &s.PriceCents); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

var _ OrderRepository = (*PGOrderRepository)(nil)
