package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalystwells-core/internal/core/domain"
	"catalystwells-core/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Wallet Store ---

// walletStore holds the wallets shared by the wallet repo and the transfer
// primitive. The primitive takes the write lock for the whole re-check and
// mutate sequence, standing in for the stored procedure's row locks.
type walletStore struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newWalletStore() *walletStore {
	return &walletStore{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (s *walletStore) add(w *domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = w
}

// snapshot returns a copy so pre-check reads never observe a half-applied
// mutation.
func (s *walletStore) snapshot(w *domain.Wallet) *domain.Wallet {
	cp := *w
	return &cp
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	store *walletStore
}

func newInMemoryWalletRepo(store *walletStore) *inMemoryWalletRepo {
	return &inMemoryWalletRepo{store: store}
}

func (r *inMemoryWalletRepo) GetByStudentID(ctx context.Context, trust domain.TrustLevel, studentID uuid.UUID) (*domain.Wallet, error) {
	if !trust.Permits(studentID) {
		return nil, fmt.Errorf("access denied")
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, w := range r.store.wallets {
		if w.StudentID == studentID {
			return r.store.snapshot(w), nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByAddress(ctx context.Context, trust domain.TrustLevel, address string) (*domain.Wallet, error) {
	if !trust.IsSystem() {
		return nil, fmt.Errorf("access denied")
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, w := range r.store.wallets {
		if w.Address == address {
			return r.store.snapshot(w), nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) IncrementFailedPasswordAttempts(ctx context.Context, walletID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.FailedPasswordAttempts++
	return nil
}

// --- In-Memory Transfer Repo ---

// inMemoryTransferRepo mimics the execute_wallet_transfer stored procedure:
// balance and daily limit are re-checked under the lock, and the hash's
// uniqueness backstops a concurrent duplicate of the same request.
type inMemoryTransferRepo struct {
	store      *walletStore
	seenHashes map[string]uuid.UUID
	ledger     []*domain.WalletTransaction
}

func newInMemoryTransferRepo(store *walletStore) *inMemoryTransferRepo {
	return &inMemoryTransferRepo{
		store:      store,
		seenHashes: make(map[string]uuid.UUID),
	}
}

func (r *inMemoryTransferRepo) Execute(ctx context.Context, p ports.TransferParams) (*domain.TransferResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sender, ok := r.store.wallets[p.FromWalletID]
	if !ok {
		return nil, fmt.Errorf("sender wallet not found")
	}
	recipient, ok := r.store.wallets[p.ToWalletID]
	if !ok {
		return nil, fmt.Errorf("recipient wallet not found")
	}

	if _, dup := r.seenHashes[p.Hash]; dup {
		return nil, fmt.Errorf("duplicate transaction hash")
	}
	if sender.Balance(p.Currency) < p.Amount {
		return nil, fmt.Errorf("insufficient balance")
	}
	if sender.DailySpent(p.Currency)+p.Amount > sender.DailyLimit(p.Currency) {
		return nil, fmt.Errorf("daily limit exceeded")
	}

	switch p.Currency {
	case domain.CurrencyMindGems:
		sender.MindGemsBalance -= int64(p.Amount)
		recipient.MindGemsBalance += int64(p.Amount)
		sender.DailySpentGems += int64(p.Amount)
	case domain.CurrencyFluxon:
		sender.FluxonBalance -= p.Amount
		recipient.FluxonBalance += p.Amount
		sender.DailySpentFluxon += p.Amount
	}

	txID := uuid.New()
	r.seenHashes[p.Hash] = txID
	r.ledger = append(r.ledger, &domain.WalletTransaction{
		ID:           txID,
		FromWalletID: sender.ID,
		ToWalletID:   recipient.ID,
		FromAddress:  sender.Address,
		ToAddress:    recipient.Address,
		Currency:     p.Currency,
		Amount:       p.Amount,
		Memo:         p.Memo,
		Hash:         p.Hash,
		Status:       domain.TransactionStatusCompleted,
		CreatedAt:    time.Now().UTC(),
	})

	return &domain.TransferResult{
		TransactionID:    txID,
		Hash:             p.Hash,
		SenderBalance:    sender.Balance(p.Currency),
		RecipientBalance: recipient.Balance(p.Currency),
	}, nil
}

// --- In-Memory Profile Repo ---

type inMemoryProfileRepo struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*domain.Profile
}

func newInMemoryProfileRepo() *inMemoryProfileRepo {
	return &inMemoryProfileRepo{profiles: make(map[uuid.UUID]*domain.Profile)}
}

func (r *inMemoryProfileRepo) add(p *domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = p
}

func (r *inMemoryProfileRepo) GetByUserID(ctx context.Context, trust domain.TrustLevel, userID uuid.UUID) (*domain.Profile, error) {
	if !trust.Permits(userID) {
		return nil, fmt.Errorf("access denied")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *inMemoryProfileRepo) GetByStudentTag(ctx context.Context, trust domain.TrustLevel, tag string) (*domain.Profile, error) {
	if !trust.IsSystem() {
		return nil, fmt.Errorf("access denied")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if p.StudentTag == tag {
			return p, nil
		}
	}
	return nil, nil
}

func (r *inMemoryProfileRepo) UpdateGems(ctx context.Context, trust domain.TrustLevel, userID uuid.UUID, gems int64) error {
	if !trust.IsSystem() {
		return fmt.Errorf("access denied")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		p.Gems = gems
	}
	return nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.IdempotencyLog
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{logs: make(map[string]*domain.IdempotencyLog)}
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log, ok := r.logs[key]
	if !ok {
		return nil, nil
	}
	return log, nil
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, log *domain.IdempotencyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[log.Key]; ok {
		return nil // first writer wins
	}
	r.logs[log.Key] = log
	return nil
}

// --- In-Memory Side-Effect Repos ---

type inMemorySecurityLogRepo struct {
	mu   sync.Mutex
	logs []*domain.SecurityLog
}

func (r *inMemorySecurityLogRepo) Create(ctx context.Context, log *domain.SecurityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

type inMemoryNotificationRepo struct {
	mu            sync.Mutex
	notifications []*domain.WalletNotification
}

func (r *inMemoryNotificationRepo) Create(ctx context.Context, n *domain.WalletNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return nil
}

type inMemoryAchievementRepo struct {
	mu     sync.Mutex
	checks []uuid.UUID
}

func (r *inMemoryAchievementRepo) CheckWalletAchievements(ctx context.Context, walletID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, walletID)
	return nil
}

type inMemoryAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

// --- In-Memory OAuth Repos ---

type inMemoryOAuthClientRepo struct {
	mu      sync.RWMutex
	clients map[string]*domain.OAuthClient
}

func newInMemoryOAuthClientRepo() *inMemoryOAuthClientRepo {
	return &inMemoryOAuthClientRepo{clients: make(map[string]*domain.OAuthClient)}
}

func (r *inMemoryOAuthClientRepo) add(c *domain.OAuthClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ClientID] = c
}

func (r *inMemoryOAuthClientRepo) GetByClientID(ctx context.Context, clientID string) (*domain.OAuthClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[clientID]
	if !ok {
		return nil, nil
	}
	return c, nil
}

type inMemoryAuthCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*domain.AuthorizationCode
}

func newInMemoryAuthCodeRepo() *inMemoryAuthCodeRepo {
	return &inMemoryAuthCodeRepo{codes: make(map[string]*domain.AuthorizationCode)}
}

func (r *inMemoryAuthCodeRepo) Create(ctx context.Context, code *domain.AuthorizationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code.Code]; ok {
		return fmt.Errorf("code already exists")
	}
	r.codes[code.Code] = code
	return nil
}

type inMemoryGrantRepo struct {
	mu     sync.RWMutex
	grants map[uuid.UUID]*domain.UserAuthorization
}

func newInMemoryGrantRepo() *inMemoryGrantRepo {
	return &inMemoryGrantRepo{grants: make(map[uuid.UUID]*domain.UserAuthorization)}
}

func (r *inMemoryGrantRepo) GetActive(ctx context.Context, trust domain.TrustLevel, userID, applicationID uuid.UUID) (*domain.UserAuthorization, error) {
	if !trust.Permits(userID) {
		return nil, fmt.Errorf("access denied")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.grants {
		if g.UserID == userID && g.ApplicationID == applicationID && g.IsActive {
			return g, nil
		}
	}
	return nil, nil
}

func (r *inMemoryGrantRepo) Create(ctx context.Context, grant *domain.UserAuthorization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	r.grants[grant.ID] = grant
	return nil
}

func (r *inMemoryGrantRepo) UpdateScopes(ctx context.Context, id uuid.UUID, scopes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[id]
	if !ok {
		return fmt.Errorf("grant not found")
	}
	g.GrantedScopes = scopes
	return nil
}

type inMemoryScopeRepo struct {
	defs map[string]domain.ScopeDefinition
}

func newInMemoryScopeRepo(defs ...domain.ScopeDefinition) *inMemoryScopeRepo {
	r := &inMemoryScopeRepo{defs: make(map[string]domain.ScopeDefinition)}
	for _, d := range defs {
		r.defs[d.Name] = d
	}
	return r
}

func (r *inMemoryScopeRepo) ListByNames(ctx context.Context, names []string) ([]domain.ScopeDefinition, error) {
	var out []domain.ScopeDefinition
	for _, name := range names {
		if d, ok := r.defs[name]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}
