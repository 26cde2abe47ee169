package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// WalletTransaction is an immutable ledger row created by the atomic
// transfer primitive. Once completed it is never mutated.
type WalletTransaction struct {
	ID           uuid.UUID         `json:"id"`
	FromWalletID uuid.UUID         `json:"from_wallet_id"`
	ToWalletID   uuid.UUID         `json:"to_wallet_id"`
	FromAddress  string            `json:"from_address"`
	ToAddress    string            `json:"to_address"`
	Currency     Currency          `json:"currency_type"`
	Amount       float64           `json:"amount"`
	Memo         string            `json:"memo,omitempty"`
	Hash         string            `json:"transaction_hash"`
	Status       TransactionStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// TransferResult is what the database-side primitive reports back:
// the new ledger row id plus both post-transaction balances.
type TransferResult struct {
	TransactionID    uuid.UUID `json:"transaction_id"`
	Hash             string    `json:"transaction_hash"`
	SenderBalance    float64   `json:"sender_balance"`
	RecipientBalance float64   `json:"recipient_balance"`
}

// NewTransactionHash derives the ledger hash for a transfer. When the caller
// supplied a request id the hash is deterministic, so the ledger's unique
// constraint rejects a concurrent duplicate of the same request. Otherwise
// it is 32 bytes of fresh randomness.
func NewTransactionHash(walletID uuid.UUID, requestID string) string {
	if requestID != "" {
		sum := sha256.Sum256([]byte(walletID.String() + ":" + requestID))
		return hex.EncodeToString(sum[:])
	}
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
