package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AircraftRepository interface {
	Create(ctx context.Context, layout domain.AircraftLayout) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Aircraft, error)
	FreeBetween(ctx context.Context, departure, arrival time.Time, bigOnly bool) ([]domain.Aircraft, error)
}

type PGAircraftRepository struct {
	db *pgxpool.Pool
}

func NewAircraftRepository(db *pgxpool.Pool) AircraftRepository {
	return &PGAircraftRepository{db: db}
}

// Create inserts the aircraft together with its cabin sections and the full
// seat-position grid in one transaction. The layout is immutable afterwards.
func (r *PGAircraftRepository) Create(ctx context.Context, layout domain.AircraftLayout) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, `INSERT INTO aircraft (manufacturer, size, purchase_date)
		VALUES ($1, $2, $3)
		RETURNING id`, layout.Manufacturer, layout.Size, layout.PurchaseDate).Scan(&id); err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO cabin_sections (aircraft_id, class_type, num_rows, num_cols) VALUES ($1, $2, $3, $4)`,
		id, domain.ClassEconomy, layout.EconomyRows, layout.EconomyCols)
	queueSeatPositions(batch, id, domain.ClassEconomy, layout.EconomyRows, layout.EconomyCols)

	if layout.Size == domain.PlaneSizeBig {
		batch.Queue(`INSERT INTO cabin_sections (aircraft_id, class_type, num_rows, num_cols) VALUES ($1, $2, $3, $4)`,
			id, domain.ClassBusiness, layout.BusinessRows, layout.BusinessCols)
		queueSeatPositions(batch, id, domain.ClassBusiness, layout.BusinessRows, layout.BusinessCols)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, err
	}

	return id, tx.Commit(ctx)
}

func queueSeatPositions(batch *pgx.Batch, aircraftID int64, class domain.CabinClass, rows, cols int) {
	letters := domain.ColumnLetters(cols)
	for row := 1; row <= rows; row++ {
		for _, col := range letters {
			batch.Queue(`INSERT INTO seat_positions (aircraft_id, class_type, row_num, col_letter) VALUES ($1, $2, $3, $4)`,
				aircraftID, class, row, col)
		}
	}
}

func (r *PGAircraftRepository) GetByID(ctx context.Context, id int64) (*domain.Aircraft, error) {
	row := r.db.QueryRow(ctx, `SELECT id, manufacturer, size, purchase_date, created_at FROM aircraft WHERE id=$1`, id)
	var a domain.Aircraft
	if err := row.Scan(&a.ID, &a.Manufacturer, &a.Size, &a.PurchaseDate, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("aircraft not found")
		}
		return nil, err
	}
	return &a, nil
}

// FreeBetween returns aircraft with no non-cancelled flight strictly
// overlapping [departure, arrival). Long-haul windows restrict to Big planes.
func (r *PGAircraftRepository) FreeBetween(ctx context.Context, departure, arrival time.Time, bigOnly bool) ([]domain.Aircraft, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.manufacturer, a.size, a.purchase_date, a.created_at
		FROM aircraft a
		WHERE ($3 = false OR a.size = 'Big')
		  AND NOT EXISTS (
			SELECT 1
			FROM flights f
			WHERE f.aircraft_id = a.id
			  AND f.status <> 'cancelled'
			  AND f.departure_time < $2
			  AND $1 < f.arrival_time
		  )
		ORDER BY a.id`, departure, arrival, bigOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	free := make([]domain.Aircraft, 0)
	for rows.Next() {
		var a domain.Aircraft
		if err := rows.Scan(&a.ID, &a.Manufacturer, &a.Size, &a.PurchaseDate, &a.CreatedAt); err != nil {
			return nil, err
		}
		free = append(free, a)
	}
	return free, rows.Err()
}

var _ AircraftRepository = (*PGAircraftRepository)(nil)
