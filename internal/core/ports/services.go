package ports

import (
	"context"
	"time"

	"catalystwells-core/internal/core/domain"

	"github.com/google/uuid"
)

// --- Wallet transfer ---

// TransferRequest holds validated input for a peer-to-peer transfer.
// Exactly one of ToAddress / ToStudentTag identifies the recipient.
type TransferRequest struct {
	StudentID    uuid.UUID
	ToAddress    string
	ToStudentTag string
	Amount       float64
	Currency     domain.Currency
	Memo         string
	Password     string
	RequestID    string
	ClientIP     string
}

// TransferReceipt is returned to the caller on success.
type TransferReceipt struct {
	TransactionID uuid.UUID `json:"id"`
	Hash          string    `json:"hash"`
	Amount        float64   `json:"amount"`
	Fee           float64   `json:"fee"`
	Status        string    `json:"status"`
}

// WalletBalances is the read-side view of a wallet.
type WalletBalances struct {
	Address          string  `json:"wallet_address"`
	MindGems         int64   `json:"mind_gems_balance"`
	Fluxon           float64 `json:"fluxon_balance"`
	DailySpentGems   int64   `json:"daily_spent_gems"`
	DailyLimitGems   int64   `json:"daily_limit_gems"`
	DailySpentFluxon float64 `json:"daily_spent_fluxon"`
	DailyLimitFluxon float64 `json:"daily_limit_fluxon"`
	IsLocked         bool    `json:"is_locked"`
}

// WalletService defines the wallet transfer business logic.
type WalletService interface {
	Transfer(ctx context.Context, req TransferRequest) (*TransferReceipt, error)
	GetBalances(ctx context.Context, studentID uuid.UUID) (*WalletBalances, error)
}

// --- OAuth authorization flow ---

// SessionUser is the authenticated end user as seen by the flow.
type SessionUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// AuthorizeRequest carries the query parameters of GET /oauth/authorize.
// User is nil when no active session exists; RequestURL is the original
// authorization URL used for the post-login return_to pointer.
type AuthorizeRequest struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
	User                *SessionUser
	RequestURL          string
}

// AuthorizeParams echoes the resolved request parameters back to the
// consent screen so the decision submission can replay them.
type AuthorizeParams struct {
	ClientID            string `json:"client_id"`
	RedirectURI         string `json:"redirect_uri"`
	Scope               string `json:"scope"`
	State               string `json:"state,omitempty"`
	CodeChallenge       string `json:"code_challenge,omitempty"`
	CodeChallengeMethod string `json:"code_challenge_method,omitempty"`
}

// ConsentData is returned when explicit consent is required.
type ConsentData struct {
	App    *domain.OAuthClient      `json:"app"`
	Scopes []domain.ScopeDefinition `json:"scopes"`
	User   SessionUser              `json:"user"`
	Params AuthorizeParams          `json:"params"`
}

// AuthorizeResult is the outcome of the GET step: either a redirect (login
// required, or auto-approved code issuance) or consent-screen data.
type AuthorizeResult struct {
	RedirectURL string
	Consent     *ConsentData
}

// ConsentDecision carries the POST /oauth/authorize body.
type ConsentDecision struct {
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
	Decision            string // "approve" or "deny"
	User                SessionUser
	ClientIP            string
}

// OAuthService implements the authorization-code grant with optional PKCE.
type OAuthService interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error)
	Decide(ctx context.Context, req ConsentDecision) (string, error) // redirect URL
}

// --- Ambient services ---

// TokenService handles the cookie-bound session tokens.
type TokenService interface {
	Generate(user SessionUser) (string, time.Time, error)
	Validate(token string) (*SessionUser, error)
}

// AuditService records audit entries asynchronously (fire-and-forget).
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
