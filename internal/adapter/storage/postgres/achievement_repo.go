package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AchievementRepo triggers the database-side achievement pass. The function
// inspects the wallet's transaction history and awards any newly earned
// achievements itself.
type AchievementRepo struct {
	pool Pool
}

// NewAchievementRepo creates a new AchievementRepo.
func NewAchievementRepo(pool Pool) *AchievementRepo {
	return &AchievementRepo{pool: pool}
}

// CheckWalletAchievements runs the achievement pass for a wallet.
func (r *AchievementRepo) CheckWalletAchievements(ctx context.Context, walletID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `SELECT check_wallet_achievements($1)`, walletID); err != nil {
		return fmt.Errorf("check wallet achievements: %w", err)
	}
	return nil
}
