package ports

import (
	"context"

	"catalystwells-core/internal/core/domain"

	"github.com/google/uuid"
)

// WalletRepository defines persistence operations for student wallets.
// Lookups crossing user boundaries require system trust; balances are never
// written through this interface.
type WalletRepository interface {
	GetByStudentID(ctx context.Context, trust domain.TrustLevel, studentID uuid.UUID) (*domain.Wallet, error)
	GetByAddress(ctx context.Context, trust domain.TrustLevel, address string) (*domain.Wallet, error)
	IncrementFailedPasswordAttempts(ctx context.Context, walletID uuid.UUID) error
}

// ProfileRepository reads the denormalized profile rows and mirrors the
// gems balance for dashboard display.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, trust domain.TrustLevel, userID uuid.UUID) (*domain.Profile, error)
	GetByStudentTag(ctx context.Context, trust domain.TrustLevel, tag string) (*domain.Profile, error)
	UpdateGems(ctx context.Context, trust domain.TrustLevel, userID uuid.UUID, gems int64) error
}

// TransferParams is the input to the atomic transfer primitive.
type TransferParams struct {
	FromWalletID uuid.UUID
	ToWalletID   uuid.UUID
	Currency     domain.Currency
	Amount       float64
	Memo         string
	Hash         string
}

// TransferRepository invokes the database-side atomic transfer primitive.
// It is the sole mutator of wallet balances: the stored procedure locks
// both wallet rows, moves the amount, bumps the daily-spent counter and
// writes the ledger row in one transaction.
type TransferRepository interface {
	Execute(ctx context.Context, p TransferParams) (*domain.TransferResult, error)
}

// IdempotencyRepository is the durable idempotency layer (DB backup behind
// the Redis cache).
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
	Create(ctx context.Context, log *domain.IdempotencyLog) error
}

// SecurityLogRepository persists wallet security events.
type SecurityLogRepository interface {
	Create(ctx context.Context, log *domain.SecurityLog) error
}

// NotificationRepository persists wallet notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.WalletNotification) error
}

// AchievementRepository triggers the database-side achievement pass for a
// wallet after a completed transfer.
type AchievementRepository interface {
	CheckWalletAchievements(ctx context.Context, walletID uuid.UUID) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// OAuthClientRepository reads registered developer applications.
type OAuthClientRepository interface {
	GetByClientID(ctx context.Context, clientID string) (*domain.OAuthClient, error)
}

// AuthorizationCodeRepository persists issued authorization codes.
type AuthorizationCodeRepository interface {
	Create(ctx context.Context, code *domain.AuthorizationCode) error
}

// GrantRepository manages the durable user-consent records.
type GrantRepository interface {
	GetActive(ctx context.Context, trust domain.TrustLevel, userID, applicationID uuid.UUID) (*domain.UserAuthorization, error)
	Create(ctx context.Context, grant *domain.UserAuthorization) error
	UpdateScopes(ctx context.Context, id uuid.UUID, scopes []string) error
}

// ScopeRepository reads the human-readable scope descriptions shown on the
// consent screen.
type ScopeRepository interface {
	ListByNames(ctx context.Context, names []string) ([]domain.ScopeDefinition, error)
}
