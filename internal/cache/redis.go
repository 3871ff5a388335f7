package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flytau/config"
	"github.com/Domenick1991/flytau/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// AcquireSeatLock takes a short advisory hold on one seat while the booking
// transaction runs. Correctness does not depend on it; the row locks inside
// the booking transaction do the real work.
func (c *RedisCache) AcquireSeatLock(ctx context.Context, flightNum string, seat domain.SeatRef, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatLockKey(flightNum, seat), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, flightNum string, seat domain.SeatRef) error {
	return c.client.Del(ctx, seatLockKey(flightNum, seat)).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatLockKey(flightNum string, seat domain.SeatRef) string {
	return fmt.Sprintf("lock:flight:%s:seat:%s:%d:%s", flightNum, seat.Class, seat.Row, seat.Column)
}
