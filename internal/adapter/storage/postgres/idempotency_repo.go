package postgres

import (
	"context"
	"errors"
	"fmt"

	"catalystwells-core/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo is the durable idempotency layer behind the Redis cache.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Get returns the stored response for a key, or nil when unseen or expired.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	query := `SELECT key, transaction_id, response_json, created_at
		FROM idempotency_logs
		WHERE key = $1 AND created_at > NOW() - INTERVAL '24 hours'`

	log := &domain.IdempotencyLog{}
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&log.Key, &log.TransactionID, &log.ResponseJSON, &log.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency log: %w", err)
	}
	return log, nil
}

// Create stores a completed response. A duplicate key is not an error; the
// first writer wins and retries read it back.
func (r *IdempotencyRepo) Create(ctx context.Context, log *domain.IdempotencyLog) error {
	query := `INSERT INTO idempotency_logs (key, transaction_id, response_json, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, log.Key, log.TransactionID, log.ResponseJSON); err != nil {
		return fmt.Errorf("create idempotency log: %w", err)
	}
	return nil
}
