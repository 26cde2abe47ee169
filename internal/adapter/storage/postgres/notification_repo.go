package postgres

import (
	"context"
	"fmt"

	"catalystwells-core/internal/core/domain"
)

// NotificationRepo persists in-app wallet notifications.
type NotificationRepo struct {
	pool Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(pool Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// Create inserts a notification row.
func (r *NotificationRepo) Create(ctx context.Context, n *domain.WalletNotification) error {
	query := `INSERT INTO wallet_notifications
		(wallet_id, notification_type, title, message, transaction_id, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := r.pool.Exec(ctx, query,
		n.WalletID, n.Type, n.Title, n.Message, n.TransactionID, n.Priority,
	)
	if err != nil {
		return fmt.Errorf("create wallet notification: %w", err)
	}
	return nil
}
