package postgres

import (
	"context"
	"testing"
	"time"

	"catalystwells-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(studentID uuid.UUID) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		ID:               uuid.New(),
		StudentID:        studentID,
		Address:          "CWT-A1B2C3D4",
		Nickname:         "My Wallet",
		MindGemsBalance:  1_000,
		FluxonBalance:    25.5,
		PasswordHash:     "somehash",
		PasswordSalt:     "somesalt",
		DailySpentGems:   10,
		DailyLimitGems:   500,
		DailySpentFluxon: 1.5,
		DailyLimitFluxon: 100,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func walletTestColumns() []string {
	return []string{
		"id", "student_id", "wallet_address", "wallet_nickname",
		"mind_gems_balance", "fluxon_balance",
		"transaction_password_hash", "password_salt",
		"daily_spent_gems", "daily_limit_gems", "daily_spent_fluxon", "daily_limit_fluxon",
		"is_locked", "failed_password_attempts", "created_at", "updated_at",
	}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletTestColumns()).AddRow(
		w.ID, w.StudentID, w.Address, w.Nickname,
		w.MindGemsBalance, w.FluxonBalance,
		w.PasswordHash, w.PasswordSalt,
		w.DailySpentGems, w.DailyLimitGems, w.DailySpentFluxon, w.DailyLimitFluxon,
		w.IsLocked, w.FailedPasswordAttempts, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_GetByStudentID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM student_wallets WHERE student_id").
		WithArgs(w.StudentID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByStudentID(context.Background(), domain.AsUser(w.StudentID), w.StudentID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, w.MindGemsBalance, result.MindGemsBalance)
	assert.Equal(t, w.PasswordHash, result.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByStudentID_OtherUserDenied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	// No query expectation: the guard rejects before touching the pool.
	_, err = repo.GetByStudentID(context.Background(), domain.AsUser(uuid.New()), uuid.New())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByStudentID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	studentID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM student_wallets WHERE student_id").
		WithArgs(studentID).
		WillReturnRows(pgxmock.NewRows(walletTestColumns()))

	result, err := repo.GetByStudentID(context.Background(), domain.AsSystem(), studentID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM student_wallets WHERE wallet_address").
		WithArgs(w.Address).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByAddress(context.Background(), domain.AsSystem(), w.Address)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.Address, result.Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByAddress_UserTrustDenied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	_, err = repo.GetByAddress(context.Background(), domain.AsUser(uuid.New()), "CWT-SOMEONE")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_IncrementFailedPasswordAttempts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectExec("UPDATE student_wallets").
		WithArgs(walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.IncrementFailedPasswordAttempts(context.Background(), walletID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_IncrementFailedPasswordAttempts_MissingWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectExec("UPDATE student_wallets").
		WithArgs(walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.IncrementFailedPasswordAttempts(context.Background(), walletID)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
