package postgres

import (
	"context"
	"fmt"

	"catalystwells-core/internal/core/domain"
)

// SecurityLogRepo persists wallet security events.
type SecurityLogRepo struct {
	pool Pool
}

// NewSecurityLogRepo creates a new SecurityLogRepo.
func NewSecurityLogRepo(pool Pool) *SecurityLogRepo {
	return &SecurityLogRepo{pool: pool}
}

// Create inserts a security event row.
func (r *SecurityLogRepo) Create(ctx context.Context, log *domain.SecurityLog) error {
	query := `INSERT INTO wallet_security_logs (wallet_id, action_type, action_details, success, created_at)
		VALUES ($1, $2, $3, $4, NOW())`

	if _, err := r.pool.Exec(ctx, query, log.WalletID, log.Action, log.Details, log.Success); err != nil {
		return fmt.Errorf("create security log: %w", err)
	}
	return nil
}
