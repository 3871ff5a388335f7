package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CrewRepository interface {
	CreateWorker(ctx context.Context, worker domain.Worker) error
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Worker, error)
	Available(ctx context.Context, role domain.WorkerRole, departure, arrival time.Time, longHaul bool, origin string) ([]domain.Worker, error)
}

type PGCrewRepository struct {
	db *pgxpool.Pool
}

func NewCrewRepository(db *pgxpool.Pool) CrewRepository {
	return &PGCrewRepository{db: db}
}

func (r *PGCrewRepository) CreateWorker(ctx context.Context, worker domain.Worker) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM workers WHERE id=$1)`, worker.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrWorkerIDTaken
	}

	_, err := r.db.Exec(ctx, `INSERT INTO workers
		(id, first_name, last_name, phone, city, street, house_num, start_date, role, long_haul_certified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		worker.ID, worker.FirstName, worker.LastName, worker.Phone, worker.City, worker.Street,
		worker.HouseNum, worker.StartDate, worker.Role, worker.LongHaulCertified)
	return err
}

func (r *PGCrewRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Worker, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name, phone, city, street, house_num, start_date, role, long_haul_certified
		FROM workers
		WHERE id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkers(rows)
}

// Available returns workers of the role who are employed by departure, hold
// the long-haul certification when required, have no assignment overlapping
// [departure, arrival), and satisfy the rest-and-position rule: their latest
// prior arrival either does not exist, landed at the origin airport, or is at
// least 24 hours before the new departure.
func (r *PGCrewRepository) Available(ctx context.Context, role domain.WorkerRole, departure, arrival time.Time, longHaul bool, origin string) ([]domain.Worker, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.id, w.first_name, w.last_name, w.phone, w.city, w.street, w.house_num,
		       w.start_date, w.role, w.long_haul_certified
		FROM workers w
		LEFT JOIN LATERAL (
			SELECT f.arrival_time AS last_arrival, f.destination AS last_airport
			FROM crew_assignments ca
			JOIN flights f ON f.flight_num = ca.flight_num
			WHERE ca.worker_id = w.id
			  AND f.status <> 'cancelled'
			  AND f.arrival_time < $2
			ORDER BY f.arrival_time DESC
			LIMIT 1
		) last_flight ON true
		WHERE w.role = $1
		  AND ($4 = false OR w.long_haul_certified)
		  AND w.start_date <= $2
		  AND NOT EXISTS (
			SELECT 1
			FROM crew_assignments ca2
			JOIN flights f2 ON f2.flight_num = ca2.flight_num
			WHERE ca2.worker_id = w.id
			  AND f2.status <> 'cancelled'
			  AND f2.departure_time < $3
			  AND $2 < f2.arrival_time
		  )
		  AND (
			last_flight.last_arrival IS NULL
			OR last_flight.last_airport = $5
			OR last_flight.last_arrival <= $2 - interval '24 hours'
		  )
		ORDER BY w.id`, role, departure, arrival, longHaul, origin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkers(rows)
}

func scanWorkers(rows pgx.Rows) ([]domain.Worker, error) {
	workers := make([]domain.Worker, 0)
	for rows.Next() {
		var w domain.Worker
		if err := rows.Scan(&w.ID, &w.FirstName, &w.LastName, &w.Phone, &w.City, &w.Street,
			&w.HouseNum, &w.StartDate, &w.Role, &w.LongHaulCertified); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

var _ CrewRepository = (*PGCrewRepository)(nil)
