package domain

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Currency is one of the two virtual currencies a student wallet holds.
type Currency string

const (
	CurrencyMindGems Currency = "mind_gems"
	CurrencyFluxon   Currency = "fluxon"
)

// Valid reports whether c is a known currency type.
func (c Currency) Valid() bool {
	return c == CurrencyMindGems || c == CurrencyFluxon
}

// Hard per-transaction ceilings per currency.
const (
	MaxTransferGems   = 10_000
	MaxTransferFluxon = 1_000
)

// MaxTransfer returns the single-transaction ceiling for the currency.
func (c Currency) MaxTransfer() float64 {
	if c == CurrencyFluxon {
		return MaxTransferFluxon
	}
	return MaxTransferGems
}

// TagLength is the length of the human-shareable student tag.
const TagLength = 12

// Wallet is a student's virtual-currency wallet. Balances are mutated only
// by the database-side transfer primitive, never by application code.
type Wallet struct {
	ID                     uuid.UUID `json:"id"`
	StudentID              uuid.UUID `json:"student_id"`
	Address                string    `json:"wallet_address"`
	Nickname               string    `json:"wallet_nickname,omitempty"`
	MindGemsBalance        int64     `json:"mind_gems_balance"`
	FluxonBalance          float64   `json:"fluxon_balance"`
	PasswordHash           string    `json:"-"`
	PasswordSalt           string    `json:"-"`
	DailySpentGems         int64     `json:"daily_spent_gems"`
	DailyLimitGems         int64     `json:"daily_limit_gems"`
	DailySpentFluxon       float64   `json:"daily_spent_fluxon"`
	DailyLimitFluxon       float64   `json:"daily_limit_fluxon"`
	IsLocked               bool      `json:"is_locked"`
	FailedPasswordAttempts int       `json:"-"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Balance returns the wallet's balance for the given currency.
func (w *Wallet) Balance(c Currency) float64 {
	if c == CurrencyFluxon {
		return w.FluxonBalance
	}
	return float64(w.MindGemsBalance)
}

// DailySpent returns how much has been sent today in the given currency.
func (w *Wallet) DailySpent(c Currency) float64 {
	if c == CurrencyFluxon {
		return w.DailySpentFluxon
	}
	return float64(w.DailySpentGems)
}

// DailyLimit returns the rolling per-day spending ceiling for the currency.
func (w *Wallet) DailyLimit(c Currency) float64 {
	if c == CurrencyFluxon {
		return w.DailyLimitFluxon
	}
	return float64(w.DailyLimitGems)
}

// ValidTransferAmount reports whether amount is finite and strictly positive.
func ValidTransferAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// SanitizeMemo strips HTML tags and surrounding whitespace from a memo
// before it is persisted. Any UI rendering stored memos verbatim stays safe.
func SanitizeMemo(memo string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(memo, ""))
}
