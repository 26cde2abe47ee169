package postgres

import (
	"context"
	"errors"
	"fmt"

	"catalystwells-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const walletColumns = `id, student_id, wallet_address, wallet_nickname,
	mind_gems_balance, fluxon_balance,
	transaction_password_hash, password_salt,
	daily_spent_gems, daily_limit_gems, daily_spent_fluxon, daily_limit_fluxon,
	is_locked, failed_password_attempts, created_at, updated_at`

// WalletRepo implements ports.WalletRepository. It never writes balances;
// those belong to the transfer primitive.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// GetByStudentID fetches a wallet by its owning student. User-level trust
// may only read its own row.
func (r *WalletRepo) GetByStudentID(ctx context.Context, trust domain.TrustLevel, studentID uuid.UUID) (*domain.Wallet, error) {
	if !trust.Permits(studentID) {
		return nil, fmt.Errorf("access denied: user %s cannot read wallet of %s", trust.UserID(), studentID)
	}

	query := `SELECT ` + walletColumns + ` FROM student_wallets WHERE student_id = $1`
	return r.scanWallet(r.pool.QueryRow(ctx, query, studentID))
}

// GetByAddress fetches a wallet by its address. Address lookup crosses user
// boundaries and requires system trust.
func (r *WalletRepo) GetByAddress(ctx context.Context, trust domain.TrustLevel, address string) (*domain.Wallet, error) {
	if !trust.IsSystem() {
		return nil, fmt.Errorf("access denied: wallet address lookup requires system trust")
	}

	query := `SELECT ` + walletColumns + ` FROM student_wallets WHERE wallet_address = $1`
	return r.scanWallet(r.pool.QueryRow(ctx, query, address))
}

// IncrementFailedPasswordAttempts bumps the failure counter. Lockout policy
// lives elsewhere; this layer only records.
func (r *WalletRepo) IncrementFailedPasswordAttempts(ctx context.Context, walletID uuid.UUID) error {
	query := `UPDATE student_wallets
		SET failed_password_attempts = failed_password_attempts + 1, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, walletID)
	if err != nil {
		return fmt.Errorf("increment failed password attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

func (r *WalletRepo) scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.StudentID, &w.Address, &w.Nickname,
		&w.MindGemsBalance, &w.FluxonBalance,
		&w.PasswordHash, &w.PasswordSalt,
		&w.DailySpentGems, &w.DailyLimitGems, &w.DailySpentFluxon, &w.DailyLimitFluxon,
		&w.IsLocked, &w.FailedPasswordAttempts, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
