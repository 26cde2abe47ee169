package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletNotification is an in-app message attached to a wallet, written
// best-effort after a transfer completes.
type WalletNotification struct {
	ID            uuid.UUID  `json:"id"`
	WalletID      uuid.UUID  `json:"wallet_id"`
	Type          string     `json:"notification_type"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	Priority      string     `json:"priority"`
	CreatedAt     time.Time  `json:"created_at"`
}

const (
	NotificationPaymentReceived = "received_payment"
	NotificationPriorityNormal  = "normal"
)

// SecurityLog records a security-relevant wallet event, e.g. a failed
// transaction-password attempt.
type SecurityLog struct {
	ID        uuid.UUID `json:"id"`
	WalletID  uuid.UUID `json:"wallet_id"`
	Action    string    `json:"action_type"`
	Details   string    `json:"action_details,omitempty"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

const SecurityActionFailedPassword = "failed_password"
