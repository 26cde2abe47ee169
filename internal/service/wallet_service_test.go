package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"catalystwells-core/internal/core/domain"
	"catalystwells-core/internal/core/ports"
	"catalystwells-core/internal/core/ports/mocks"
	"catalystwells-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc              *WalletServiceImpl
	walletRepo       *mocks.MockWalletRepository
	profileRepo      *mocks.MockProfileRepository
	transferRepo     *mocks.MockTransferRepository
	idempRepo        *mocks.MockIdempotencyRepository
	idempCache       *mocks.MockIdempotencyCache
	securityRepo     *mocks.MockSecurityLogRepository
	notificationRepo *mocks.MockNotificationRepository
	achievementRepo  *mocks.MockAchievementRepository
	auditSvc         *mocks.MockAuditService
	ctrl             *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		walletRepo:       mocks.NewMockWalletRepository(ctrl),
		profileRepo:      mocks.NewMockProfileRepository(ctrl),
		transferRepo:     mocks.NewMockTransferRepository(ctrl),
		idempRepo:        mocks.NewMockIdempotencyRepository(ctrl),
		idempCache:       mocks.NewMockIdempotencyCache(ctrl),
		securityRepo:     mocks.NewMockSecurityLogRepository(ctrl),
		notificationRepo: mocks.NewMockNotificationRepository(ctrl),
		achievementRepo:  mocks.NewMockAchievementRepository(ctrl),
		auditSvc:         mocks.NewMockAuditService(ctrl),
		ctrl:             ctrl,
	}
	d.svc = NewWalletService(
		d.walletRepo, d.profileRepo, d.transferRepo, d.idempRepo, d.idempCache,
		d.securityRepo, d.notificationRepo, d.achievementRepo, d.auditSvc,
		zerolog.Nop(),
	)
	return d
}

// testWallet builds a sender wallet whose password verifies for "pw".
// sha256("pw") as a legacy-generation hash keeps the test fast.
const pwLegacyHash = "30c952fab122c3f9759f02a6d95c3758b246b4fee239957b2d4fee46e26170c4"

func testWallet(studentID uuid.UUID) *domain.Wallet {
	return &domain.Wallet{
		ID:               uuid.New(),
		StudentID:        studentID,
		Address:          "CWT-SENDER-0001",
		Nickname:         "Main Wallet",
		MindGemsBalance:  5_000,
		FluxonBalance:    100,
		PasswordHash:     pwLegacyHash,
		DailySpentGems:   0,
		DailyLimitGems:   500,
		DailySpentFluxon: 0,
		DailyLimitFluxon: 100,
	}
}

func recipientWallet() *domain.Wallet {
	return &domain.Wallet{
		ID:        uuid.New(),
		StudentID: uuid.New(),
		Address:   "CWT-RECIP-0002",
	}
}

// expectAchievementCheck wires the detached achievement goroutine and
// returns a channel the test must wait on before finishing.
func (d *walletTestDeps) expectAchievementCheck(walletID uuid.UUID) chan struct{} {
	done := make(chan struct{})
	d.achievementRepo.EXPECT().
		CheckWalletAchievements(gomock.Any(), walletID).
		DoAndReturn(func(context.Context, uuid.UUID) error {
			close(done)
			return nil
		})
	return done
}

func waitFor(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("achievement check never ran")
	}
}

func TestWalletService_Transfer_Success(t *testing.T) {
	d := setupWalletService(t)

	ctx := context.Background()
	studentID := uuid.New()
	sender := testWallet(studentID)
	recipient := recipientWallet()
	txID := uuid.New()

	req := ports.TransferRequest{
		StudentID: studentID,
		ToAddress: recipient.Address,
		Amount:    250,
		Currency:  domain.CurrencyMindGems,
		Memo:      "  <b>lunch</b>  ",
		Password:  "pw",
		ClientIP:  "10.0.0.1",
	}

	d.walletRepo.EXPECT().GetByStudentID(ctx, domain.AsUser(studentID), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(ctx, domain.AsSystem(), recipient.Address).Return(recipient, nil)
	d.transferRepo.EXPECT().
		Execute(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p ports.TransferParams) (*domain.TransferResult, error) {
			assert.Equal(t, sender.ID, p.FromWalletID)
			assert.Equal(t, recipient.ID, p.ToWalletID)
			assert.Equal(t, domain.CurrencyMindGems, p.Currency)
			assert.Equal(t, 250.0, p.Amount)
			assert.Equal(t, "lunch", p.Memo, "memo must be sanitized before the primitive sees it")
			assert.NotEmpty(t, p.Hash)
			return &domain.TransferResult{
				TransactionID:    txID,
				Hash:             p.Hash,
				SenderBalance:    4_750,
				RecipientBalance: 250,
			}, nil
		})
	d.auditSvc.EXPECT().Log(ctx, gomock.Any()).Do(func(_ context.Context, e *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionWalletTransfer, e.Action)
		assert.Equal(t, txID.String(), e.ResourceID)
	})
	d.notificationRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, n *domain.WalletNotification) error {
		assert.Equal(t, recipient.ID, n.WalletID)
		assert.Equal(t, domain.NotificationPaymentReceived, n.Type)
		assert.Contains(t, n.Message, "Mind Gems")
		assert.Contains(t, n.Message, "Main Wallet")
		return nil
	})
	d.profileRepo.EXPECT().UpdateGems(ctx, domain.AsSystem(), sender.StudentID, int64(4_750)).Return(nil)
	d.profileRepo.EXPECT().UpdateGems(ctx, domain.AsSystem(), recipient.StudentID, int64(250)).Return(nil)
	done := d.expectAchievementCheck(sender.ID)

	receipt, err := d.svc.Transfer(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, txID, receipt.TransactionID)
	assert.Equal(t, 250.0, receipt.Amount)
	assert.Equal(t, 0.0, receipt.Fee)
	assert.Equal(t, "completed", receipt.Status)

	waitFor(t, done)
}

func TestWalletService_Transfer_SenderWalletNotFound(t *testing.T) {
	d := setupWalletService(t)

	studentID := uuid.New()
	d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), domain.AsUser(studentID), studentID).Return(nil, nil)

	_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
		StudentID: studentID,
		ToAddress: "CWT-X",
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WALLET_NOT_FOUND", appErr.Code)
	assert.Equal(t, "Sender wallet not found. Please create a wallet first.", appErr.Message)
}

func TestWalletService_Transfer_RecipientNotFound(t *testing.T) {
	d := setupWalletService(t)

	studentID := uuid.New()
	sender := testWallet(studentID)

	d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), gomock.Any(), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(gomock.Any(), domain.AsSystem(), "CWT-NOBODY").Return(nil, nil)

	_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
		StudentID: studentID,
		ToAddress: "CWT-NOBODY",
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "RECIPIENT_NOT_FOUND", appErr.Code)
}

func TestWalletService_Transfer_RecipientByStudentTag(t *testing.T) {
	d := setupWalletService(t)

	ctx := context.Background()
	studentID := uuid.New()
	sender := testWallet(studentID)
	recipient := recipientWallet()
	profile := &domain.Profile{UserID: recipient.StudentID, StudentTag: "ABC123DEF456"}
	txID := uuid.New()

	d.walletRepo.EXPECT().GetByStudentID(ctx, domain.AsUser(studentID), studentID).Return(sender, nil)
	d.profileRepo.EXPECT().GetByStudentTag(ctx, domain.AsSystem(), "ABC123DEF456").Return(profile, nil)
	d.walletRepo.EXPECT().GetByStudentID(ctx, domain.AsSystem(), recipient.StudentID).Return(recipient, nil)
	d.transferRepo.EXPECT().Execute(ctx, gomock.Any()).Return(&domain.TransferResult{
		TransactionID:    txID,
		SenderBalance:    4_990,
		RecipientBalance: 10,
	}, nil)
	d.auditSvc.EXPECT().Log(ctx, gomock.Any())
	d.notificationRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.profileRepo.EXPECT().UpdateGems(ctx, domain.AsSystem(), sender.StudentID, gomock.Any()).Return(nil)
	d.profileRepo.EXPECT().UpdateGems(ctx, domain.AsSystem(), recipient.StudentID, gomock.Any()).Return(nil)
	done := d.expectAchievementCheck(sender.ID)

	receipt, err := d.svc.Transfer(ctx, ports.TransferRequest{
		StudentID:    studentID,
		ToStudentTag: "ABC123DEF456",
		Amount:       10,
		Currency:     domain.CurrencyMindGems,
		Password:     "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, txID, receipt.TransactionID)

	waitFor(t, done)
}

func TestWalletService_Transfer_InvalidAmounts(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency domain.Currency
		wantCode string
	}{
		{"zero", 0, domain.CurrencyMindGems, "INVALID_AMOUNT"},
		{"negative", -50, domain.CurrencyMindGems, "INVALID_AMOUNT"},
		{"NaN", math.NaN(), domain.CurrencyMindGems, "INVALID_AMOUNT"},
		{"positive infinity", math.Inf(1), domain.CurrencyMindGems, "INVALID_AMOUNT"},
		{"fractional gems", 10.5, domain.CurrencyMindGems, "INVALID_AMOUNT"},
		{"gems over ceiling", 10_001, domain.CurrencyMindGems, "LIMIT_EXCEEDED"},
		{"fluxon over ceiling", 1_000.5, domain.CurrencyFluxon, "LIMIT_EXCEEDED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupWalletService(t)

			studentID := uuid.New()
			sender := testWallet(studentID)
			recipient := recipientWallet()

			d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), gomock.Any(), studentID).Return(sender, nil)
			d.walletRepo.EXPECT().GetByAddress(gomock.Any(), gomock.Any(), recipient.Address).Return(recipient, nil)

			_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
				StudentID: studentID,
				ToAddress: recipient.Address,
				Amount:    tt.amount,
				Currency:  tt.currency,
				Password:  "pw",
			})

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestWalletService_Transfer_MissingRecipient(t *testing.T) {
	d := setupWalletService(t)

	_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
		StudentID: uuid.New(),
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestWalletService_Transfer_WrongPassword(t *testing.T) {
	d := setupWalletService(t)

	ctx := context.Background()
	studentID := uuid.New()
	sender := testWallet(studentID)
	recipient := recipientWallet()

	d.walletRepo.EXPECT().GetByStudentID(ctx, gomock.Any(), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(ctx, gomock.Any(), recipient.Address).Return(recipient, nil)
	// A failed attempt writes a security log and bumps the counter, but the
	// wallet is not locked here.
	d.securityRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, l *domain.SecurityLog) error {
		assert.Equal(t, sender.ID, l.WalletID)
		assert.Equal(t, domain.SecurityActionFailedPassword, l.Action)
		assert.False(t, l.Success)
		return nil
	})
	d.walletRepo.EXPECT().IncrementFailedPasswordAttempts(ctx, sender.ID).Return(nil)

	_, err := d.svc.Transfer(ctx, ports.TransferRequest{
		StudentID: studentID,
		ToAddress: recipient.Address,
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "not the password",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_PASSWORD", appErr.Code)
	assert.Equal(t, 401, appErr.HTTPStatus)
}

func TestWalletService_Transfer_PasswordNotSet(t *testing.T) {
	d := setupWalletService(t)

	studentID := uuid.New()
	sender := testWallet(studentID)
	sender.PasswordHash = ""
	recipient := recipientWallet()

	d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), gomock.Any(), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(gomock.Any(), gomock.Any(), recipient.Address).Return(recipient, nil)

	_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
		StudentID: studentID,
		ToAddress: recipient.Address,
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PASSWORD_NOT_SET", appErr.Code)
}

func TestWalletService_Transfer_WalletLocked(t *testing.T) {
	d := setupWalletService(t)

	studentID := uuid.New()
	sender := testWallet(studentID)
	sender.IsLocked = true
	recipient := recipientWallet()

	d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), gomock.Any(), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(gomock.Any(), gomock.Any(), recipient.Address).Return(recipient, nil)

	_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
		StudentID: studentID,
		ToAddress: recipient.Address,
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WALLET_LOCKED", appErr.Code)
	assert.Equal(t, 403, appErr.HTTPStatus)
}

func TestWalletService_Transfer_InsufficientBalance(t *testing.T) {
	d := setupWalletService(t)

	studentID := uuid.New()
	sender := testWallet(studentID)
	sender.MindGemsBalance = 5
	recipient := recipientWallet()

	d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), gomock.Any(), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(gomock.Any(), gomock.Any(), recipient.Address).Return(recipient, nil)

	_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
		StudentID: studentID,
		ToAddress: recipient.Address,
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INSUFFICIENT_BALANCE", appErr.Code)
}

func TestWalletService_Transfer_DailyLimit(t *testing.T) {
	// 480 of a 500 daily limit already spent: 21 must fail, 20 must pass.
	studentID := uuid.New()

	run := func(t *testing.T, amount float64) error {
		d := setupWalletService(t)
		sender := testWallet(studentID)
		sender.DailySpentGems = 480
		sender.DailyLimitGems = 500
		recipient := recipientWallet()

		d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), gomock.Any(), studentID).Return(sender, nil)
		d.walletRepo.EXPECT().GetByAddress(gomock.Any(), gomock.Any(), recipient.Address).Return(recipient, nil)

		if amount <= 20 {
			d.transferRepo.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(&domain.TransferResult{
				TransactionID: uuid.New(),
			}, nil)
			d.auditSvc.EXPECT().Log(gomock.Any(), gomock.Any())
			d.notificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			d.profileRepo.EXPECT().UpdateGems(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
			done := d.expectAchievementCheck(sender.ID)
			defer waitFor(t, done)
		}

		_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
			StudentID: studentID,
			ToAddress: recipient.Address,
			Amount:    amount,
			Currency:  domain.CurrencyMindGems,
			Password:  "pw",
		})
		return err
	}

	t.Run("over the remaining budget", func(t *testing.T) {
		err := run(t, 21)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DAILY_LIMIT_EXCEEDED", appErr.Code)
	})

	t.Run("exactly the remaining budget", func(t *testing.T) {
		assert.NoError(t, run(t, 20))
	})
}

func TestWalletService_Transfer_IdempotentRetry(t *testing.T) {
	d := setupWalletService(t)

	ctx := context.Background()
	studentID := uuid.New()
	sender := testWallet(studentID)
	txID := uuid.New()

	cached, _ := json.Marshal(&ports.TransferReceipt{
		TransactionID: txID,
		Amount:        50,
		Status:        "completed",
	})
	idempKey := domain.BuildIdempotencyKey(sender.ID, "req-42")

	d.walletRepo.EXPECT().GetByStudentID(ctx, gomock.Any(), studentID).Return(sender, nil)
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(cached, nil)
	// No recipient lookup, no primitive call, no side effects.

	receipt, err := d.svc.Transfer(ctx, ports.TransferRequest{
		StudentID: studentID,
		ToAddress: "CWT-RECIP-0002",
		Amount:    50,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
		RequestID: "req-42",
	})
	require.NoError(t, err)
	assert.Equal(t, txID, receipt.TransactionID)
}

func TestWalletService_Transfer_IdempotencyFallsBackToDB(t *testing.T) {
	d := setupWalletService(t)

	ctx := context.Background()
	studentID := uuid.New()
	sender := testWallet(studentID)
	txID := uuid.New()

	cached, _ := json.Marshal(&ports.TransferReceipt{TransactionID: txID, Status: "completed"})
	idempKey := domain.BuildIdempotencyKey(sender.ID, "req-db")

	d.walletRepo.EXPECT().GetByStudentID(ctx, gomock.Any(), studentID).Return(sender, nil)
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, errors.New("redis down"))
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(&domain.IdempotencyLog{
		Key:           idempKey,
		TransactionID: txID,
		ResponseJSON:  cached,
	}, nil)

	receipt, err := d.svc.Transfer(ctx, ports.TransferRequest{
		StudentID: studentID,
		ToAddress: "CWT-RECIP-0002",
		Amount:    50,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
		RequestID: "req-db",
	})
	require.NoError(t, err)
	assert.Equal(t, txID, receipt.TransactionID)
}

func TestWalletService_Transfer_PrimitiveFailure(t *testing.T) {
	d := setupWalletService(t)

	ctx := context.Background()
	studentID := uuid.New()
	sender := testWallet(studentID)
	recipient := recipientWallet()

	d.walletRepo.EXPECT().GetByStudentID(ctx, gomock.Any(), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(ctx, gomock.Any(), recipient.Address).Return(recipient, nil)
	d.transferRepo.EXPECT().Execute(ctx, gomock.Any()).Return(nil, errors.New("deadlock detected"))
	d.auditSvc.EXPECT().Log(ctx, gomock.Any()).Do(func(_ context.Context, e *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionWalletTransferFailed, e.Action)
	})

	_, err := d.svc.Transfer(ctx, ports.TransferRequest{
		StudentID: studentID,
		ToAddress: recipient.Address,
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TRANSACTION_FAILED", appErr.Code)
	assert.Equal(t, 500, appErr.HTTPStatus)
}

func TestWalletService_Transfer_SideEffectFailuresAreSwallowed(t *testing.T) {
	d := setupWalletService(t)

	ctx := context.Background()
	studentID := uuid.New()
	sender := testWallet(studentID)
	recipient := recipientWallet()
	txID := uuid.New()

	d.walletRepo.EXPECT().GetByStudentID(ctx, gomock.Any(), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(ctx, gomock.Any(), recipient.Address).Return(recipient, nil)
	d.transferRepo.EXPECT().Execute(ctx, gomock.Any()).Return(&domain.TransferResult{
		TransactionID: txID,
	}, nil)
	d.auditSvc.EXPECT().Log(ctx, gomock.Any())
	d.notificationRepo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("notification table full"))
	d.profileRepo.EXPECT().UpdateGems(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("profile gone")).Times(2)

	done := make(chan struct{})
	d.achievementRepo.EXPECT().
		CheckWalletAchievements(gomock.Any(), sender.ID).
		DoAndReturn(func(context.Context, uuid.UUID) error {
			close(done)
			return errors.New("achievement rpc failed")
		})

	receipt, err := d.svc.Transfer(ctx, ports.TransferRequest{
		StudentID: studentID,
		ToAddress: recipient.Address,
		Amount:    10,
		Currency:  domain.CurrencyMindGems,
		Password:  "pw",
	})
	require.NoError(t, err, "side-effect failures must never fail a completed transfer")
	assert.Equal(t, txID, receipt.TransactionID)

	waitFor(t, done)
}

func TestWalletService_Transfer_FluxonSkipsGemsMirror(t *testing.T) {
	d := setupWalletService(t)

	ctx := context.Background()
	studentID := uuid.New()
	sender := testWallet(studentID)
	recipient := recipientWallet()

	d.walletRepo.EXPECT().GetByStudentID(ctx, gomock.Any(), studentID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByAddress(ctx, gomock.Any(), recipient.Address).Return(recipient, nil)
	d.transferRepo.EXPECT().Execute(ctx, gomock.Any()).Return(&domain.TransferResult{
		TransactionID: uuid.New(),
	}, nil)
	d.auditSvc.EXPECT().Log(ctx, gomock.Any())
	d.notificationRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, n *domain.WalletNotification) error {
		assert.Contains(t, n.Message, "Fluxon")
		return nil
	})
	// No UpdateGems expectations: the profile mirror only tracks mind gems.
	done := d.expectAchievementCheck(sender.ID)

	_, err := d.svc.Transfer(ctx, ports.TransferRequest{
		StudentID: studentID,
		ToAddress: recipient.Address,
		Amount:    2.5,
		Currency:  domain.CurrencyFluxon,
		Password:  "pw",
	})
	require.NoError(t, err)

	waitFor(t, done)
}

func TestWalletService_GetBalances(t *testing.T) {
	d := setupWalletService(t)

	studentID := uuid.New()
	sender := testWallet(studentID)

	d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), domain.AsUser(studentID), studentID).Return(sender, nil)

	b, err := d.svc.GetBalances(context.Background(), studentID)
	require.NoError(t, err)
	assert.Equal(t, sender.Address, b.Address)
	assert.Equal(t, sender.MindGemsBalance, b.MindGems)
	assert.Equal(t, sender.FluxonBalance, b.Fluxon)
}

func TestWalletService_GetBalances_NoWallet(t *testing.T) {
	d := setupWalletService(t)

	studentID := uuid.New()
	d.walletRepo.EXPECT().GetByStudentID(gomock.Any(), gomock.Any(), studentID).Return(nil, nil)

	_, err := d.svc.GetBalances(context.Background(), studentID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WALLET_NOT_FOUND", appErr.Code)
}
