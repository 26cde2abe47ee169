package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog caches a completed transfer response so a retried request
// with the same client-generated id cannot double-spend.
type IdempotencyLog struct {
	Key           string    `json:"key"` // Format: "wallet_id:request_id"
	TransactionID uuid.UUID `json:"transaction_id"`
	ResponseJSON  []byte    `json:"response_json"`
	CreatedAt     time.Time `json:"created_at"`
}

// BuildIdempotencyKey constructs the standard key format.
func BuildIdempotencyKey(walletID uuid.UUID, requestID string) string {
	return walletID.String() + ":" + requestID
}
