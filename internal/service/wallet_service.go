package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"catalystwells-core/internal/core/domain"
	"catalystwells-core/internal/core/ports"
	"catalystwells-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// WalletServiceImpl implements ports.WalletService.
//
// The transfer path never mutates balances itself: every check here is a
// fail-fast precondition, and the actual debit/credit is delegated to the
// database-side atomic primitive behind TransferRepository, which holds the
// row locks. Side effects run strictly after the primitive confirms.
type WalletServiceImpl struct {
	walletRepo       ports.WalletRepository
	profileRepo      ports.ProfileRepository
	transferRepo     ports.TransferRepository
	idempRepo        ports.IdempotencyRepository
	idempCache       ports.IdempotencyCache
	securityRepo     ports.SecurityLogRepository
	notificationRepo ports.NotificationRepository
	achievementRepo  ports.AchievementRepository
	auditSvc         ports.AuditService
	log              zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	profileRepo ports.ProfileRepository,
	transferRepo ports.TransferRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	securityRepo ports.SecurityLogRepository,
	notificationRepo ports.NotificationRepository,
	achievementRepo ports.AchievementRepository,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:       walletRepo,
		profileRepo:      profileRepo,
		transferRepo:     transferRepo,
		idempRepo:        idempRepo,
		idempCache:       idempCache,
		securityRepo:     securityRepo,
		notificationRepo: notificationRepo,
		achievementRepo:  achievementRepo,
		auditSvc:         auditSvc,
		log:              log,
	}
}

// Transfer moves a positive amount of one currency from the authenticated
// sender's wallet to a recipient's wallet.
func (s *WalletServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferReceipt, error) {
	if !req.Currency.Valid() {
		return nil, apperror.Validation("unknown currency type")
	}
	if req.ToAddress == "" && req.ToStudentTag == "" {
		return nil, apperror.Validation("recipient address or student tag required")
	}

	// Sender wallet: the caller may only see their own row.
	sender, err := s.walletRepo.GetByStudentID(ctx, domain.AsUser(req.StudentID), req.StudentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load sender wallet: %w", err))
	}
	if sender == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	// Idempotent retry: a request id we have already completed returns the
	// original receipt without touching balances again.
	idempKey := ""
	if req.RequestID != "" {
		idempKey = domain.BuildIdempotencyKey(sender.ID, req.RequestID)
		if receipt, ok := s.lookupIdempotent(ctx, idempKey); ok {
			return receipt, nil
		}
	}

	recipient, err := s.resolveRecipient(ctx, req)
	if err != nil {
		return nil, err
	}

	if !domain.ValidTransferAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Currency == domain.CurrencyMindGems && req.Amount != math.Trunc(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Amount > req.Currency.MaxTransfer() {
		return nil, apperror.ErrLimitExceeded(fmt.Sprintf(
			"Amount exceeds the maximum of %v per transaction", req.Currency.MaxTransfer()))
	}

	memo := domain.SanitizeMemo(req.Memo)

	if err := s.verifyPassword(ctx, sender, req.Password); err != nil {
		return nil, err
	}

	if sender.IsLocked {
		return nil, apperror.ErrWalletLocked()
	}
	if sender.Balance(req.Currency) < req.Amount {
		return nil, apperror.ErrInsufficientBalance()
	}
	if sender.DailySpent(req.Currency)+req.Amount > sender.DailyLimit(req.Currency) {
		return nil, apperror.ErrDailyLimitExceeded()
	}

	// All checks passed: hand over to the atomic primitive. It is the sole
	// mutator of balances, so two concurrent transfers from this wallet can
	// never both observe a stale balance and both succeed.
	result, err := s.transferRepo.Execute(ctx, ports.TransferParams{
		FromWalletID: sender.ID,
		ToWalletID:   recipient.ID,
		Currency:     req.Currency,
		Amount:       req.Amount,
		Memo:         memo,
		Hash:         domain.NewTransactionHash(sender.ID, req.RequestID),
	})
	if err != nil {
		s.auditTransfer(ctx, domain.AuditActionWalletTransferFailed, req, sender.ID, uuid.Nil, err.Error())
		return nil, apperror.ErrTransactionFailed(err)
	}

	receipt := &ports.TransferReceipt{
		TransactionID: result.TransactionID,
		Hash:          result.Hash,
		Amount:        req.Amount,
		Fee:           0,
		Status:        string(domain.TransactionStatusCompleted),
	}

	if idempKey != "" {
		s.storeIdempotent(ctx, idempKey, result.TransactionID, receipt)
	}

	// Side effects are strictly ordered after the confirmed mutation and
	// must never fail the transfer.
	s.auditTransfer(ctx, domain.AuditActionWalletTransfer, req, sender.ID, result.TransactionID,
		fmt.Sprintf(`{"sender_balance":%v,"recipient_balance":%v}`, result.SenderBalance, result.RecipientBalance))

	s.bestEffort("recipient notification", func() error {
		return s.notificationRepo.Create(ctx, &domain.WalletNotification{
			ID:            uuid.New(),
			WalletID:      recipient.ID,
			Type:          domain.NotificationPaymentReceived,
			Title:         "Payment Received",
			Message:       paymentReceivedMessage(req.Amount, req.Currency, sender),
			TransactionID: &result.TransactionID,
			Priority:      domain.NotificationPriorityNormal,
			CreatedAt:     time.Now().UTC(),
		})
	})

	if req.Currency == domain.CurrencyMindGems {
		s.bestEffort("sender gems mirror", func() error {
			return s.profileRepo.UpdateGems(ctx, domain.AsSystem(), sender.StudentID, int64(result.SenderBalance))
		})
		s.bestEffort("recipient gems mirror", func() error {
			return s.profileRepo.UpdateGems(ctx, domain.AsSystem(), recipient.StudentID, int64(result.RecipientBalance))
		})
	}

	// Achievement pass runs detached from the request.
	go func(walletID uuid.UUID) {
		if err := s.achievementRepo.CheckWalletAchievements(context.Background(), walletID); err != nil {
			s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("achievement check failed")
		}
	}(sender.ID)

	s.log.Info().
		Str("tx_id", result.TransactionID.String()).
		Str("from_wallet", sender.ID.String()).
		Str("to_wallet", recipient.ID.String()).
		Str("currency", string(req.Currency)).
		Float64("amount", req.Amount).
		Msg("wallet transfer completed")

	return receipt, nil
}

// GetBalances returns the caller's wallet balances and daily counters.
func (s *WalletServiceImpl) GetBalances(ctx context.Context, studentID uuid.UUID) (*ports.WalletBalances, error) {
	w, err := s.walletRepo.GetByStudentID(ctx, domain.AsUser(studentID), studentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if w == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return &ports.WalletBalances{
		Address:          w.Address,
		MindGems:         w.MindGemsBalance,
		Fluxon:           w.FluxonBalance,
		DailySpentGems:   w.DailySpentGems,
		DailyLimitGems:   w.DailyLimitGems,
		DailySpentFluxon: w.DailySpentFluxon,
		DailyLimitFluxon: w.DailyLimitFluxon,
		IsLocked:         w.IsLocked,
	}, nil
}

// resolveRecipient finds the recipient wallet by 12-character student tag
// or by wallet address. Both lookups cross user boundaries and therefore
// run with system trust.
func (s *WalletServiceImpl) resolveRecipient(ctx context.Context, req ports.TransferRequest) (*domain.Wallet, error) {
	if req.ToStudentTag != "" {
		profile, err := s.profileRepo.GetByStudentTag(ctx, domain.AsSystem(), req.ToStudentTag)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("resolve student tag: %w", err))
		}
		if profile == nil {
			return nil, apperror.ErrRecipientNotFound()
		}
		wallet, err := s.walletRepo.GetByStudentID(ctx, domain.AsSystem(), profile.UserID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load recipient wallet: %w", err))
		}
		if wallet == nil {
			return nil, apperror.ErrRecipientNotFound()
		}
		return wallet, nil
	}

	wallet, err := s.walletRepo.GetByAddress(ctx, domain.AsSystem(), req.ToAddress)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load recipient wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrRecipientNotFound()
	}
	return wallet, nil
}

// verifyPassword checks the candidate against whichever hashing generation
// the wallet carries. A failed attempt bumps the failure counter and writes
// a security log, but does not lock the wallet here.
func (s *WalletServiceImpl) verifyPassword(ctx context.Context, w *domain.Wallet, candidate string) error {
	if w.PasswordHash == "" {
		return apperror.ErrPasswordNotSet()
	}

	ph, err := domain.ParsePasswordHash(w.PasswordHash, w.PasswordSalt)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("parse password hash: %w", err))
	}
	ok, err := ph.Verify(candidate)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if ok {
		return nil
	}

	s.bestEffort("failed password security log", func() error {
		return s.securityRepo.Create(ctx, &domain.SecurityLog{
			ID:        uuid.New(),
			WalletID:  w.ID,
			Action:    domain.SecurityActionFailedPassword,
			Details:   "Invalid transaction password",
			Success:   false,
			CreatedAt: time.Now().UTC(),
		})
	})
	s.bestEffort("failed password counter", func() error {
		return s.walletRepo.IncrementFailedPasswordAttempts(ctx, w.ID)
	})

	return apperror.ErrInvalidPassword()
}

// lookupIdempotent checks the Redis fast path then the durable log.
func (s *WalletServiceImpl) lookupIdempotent(ctx context.Context, key string) (*ports.TransferReceipt, bool) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached == nil {
		idempLog, err := s.idempRepo.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("db idempotency check failed")
			return nil, false
		}
		if idempLog == nil {
			return nil, false
		}
		cached = idempLog.ResponseJSON
	}

	receipt := &ports.TransferReceipt{}
	if err := json.Unmarshal(cached, receipt); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt idempotency record, ignoring")
		return nil, false
	}
	s.log.Info().Str("key", key).Msg("duplicate transfer request served from idempotency log")
	return receipt, true
}

// storeIdempotent persists the receipt in both layers, best-effort. The
// transaction hash derived from the request id backstops the rare window
// where neither layer has been written yet.
func (s *WalletServiceImpl) storeIdempotent(ctx context.Context, key string, txID uuid.UUID, receipt *ports.TransferReceipt) {
	respJSON, err := json.Marshal(receipt)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("marshal idempotency receipt")
		return
	}
	s.bestEffort("idempotency log", func() error {
		return s.idempRepo.Create(ctx, &domain.IdempotencyLog{
			Key:           key,
			TransactionID: txID,
			ResponseJSON:  respJSON,
			CreatedAt:     time.Now().UTC(),
		})
	})
	s.bestEffort("idempotency cache", func() error {
		return s.idempCache.Set(ctx, key, respJSON, idempotencyTTL)
	})
}

// bestEffort runs a side effect that must never fail the transfer: errors
// are logged and swallowed.
func (s *WalletServiceImpl) bestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		s.log.Warn().Err(err).Str("effect", name).Msg("best-effort side effect failed")
	}
}

func (s *WalletServiceImpl) auditTransfer(ctx context.Context, action domain.AuditAction, req ports.TransferRequest, walletID, txID uuid.UUID, details string) {
	resourceID := ""
	if txID != uuid.Nil {
		resourceID = txID.String()
	}
	studentID := req.StudentID
	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &studentID,
		Action:       action,
		ResourceType: "wallet_transaction",
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    req.ClientIP,
		CreatedAt:    time.Now().UTC(),
	})
}

func paymentReceivedMessage(amount float64, currency domain.Currency, sender *domain.Wallet) string {
	name := sender.Nickname
	if name == "" {
		name = sender.Address
	}
	unit := "Mind Gems"
	if currency == domain.CurrencyFluxon {
		unit = "Fluxon"
	}
	return fmt.Sprintf("You received %v %s from %s", amount, unit, name)
}
