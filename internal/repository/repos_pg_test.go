package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestRepositoryConstructors(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewFlightRepository(pool))
	assert.NotNil(t, NewOrderRepository(pool))
	assert.NotNil(t, NewAircraftRepository(pool))
	assert.NotNil(t, NewCrewRepository(pool))
	assert.NotNil(t, NewReportRepository(pool))
}
