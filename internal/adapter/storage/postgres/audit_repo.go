package postgres

import (
	"context"
	"fmt"

	"catalystwells-core/internal/core/domain"
)

// AuditRepo persists audit log entries.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create inserts an audit row.
func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `INSERT INTO activity_logs
		(user_id, action, resource_type, resource_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := r.pool.Exec(ctx, query,
		log.UserID, log.Action, log.ResourceType, log.ResourceID, log.Details, log.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
