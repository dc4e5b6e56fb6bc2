package clientstate

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const pgOpTimeout = 2 * time.Second

// Postgres hands out per-device Stores backed by the client_state table. It
// serves as the mirror secondary: the durable fallback for recovery keys when
// the browser offers no second storage medium.
type Postgres struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, log *zap.Logger) *Postgres {
	return &Postgres{pool: pool, log: log}
}

// For returns the Store scoped to one device key.
func (p *Postgres) For(deviceID string) Store {
	return &pgStore{pool: p.pool, deviceID: deviceID, log: p.log}
}

type pgStore struct {
	pool     *pgxpool.Pool
	deviceID string
	log      *zap.Logger
}

func (s *pgStore) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM client_state
		 WHERE device_id = $1 AND key = $2 AND expires_at > now()`,
		s.deviceID, key,
	).Scan(&value)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn("client_state read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

func (s *pgStore) Set(key, value string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO client_state (device_id, key, value, expires_at, updated_at)
		 VALUES ($1, $2, $3, now() + $4, now())
		 ON CONFLICT (device_id, key)
		 DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()`,
		s.deviceID, key, value, ttl,
	)
	if err != nil {
		s.log.Warn("client_state write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *pgStore) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`DELETE FROM client_state WHERE device_id = $1 AND key = $2`,
		s.deviceID, key,
	)
	if err != nil {
		s.log.Warn("client_state delete failed", zap.String("key", key), zap.Error(err))
	}
}
