package dto

import "catalystwells-core/internal/core/ports"

// SendRequest is the request body for a wallet transfer. Exactly one of
// to_address / to_student_tag must identify the recipient; the service
// rejects requests naming neither.
type SendRequest struct {
	ToAddress    string  `json:"toAddress,omitempty" binding:"omitempty,max=100"`
	ToStudentTag string  `json:"toStudentTag,omitempty" binding:"omitempty,student_tag"`
	Amount       float64 `json:"amount" binding:"required"`
	CurrencyType string  `json:"currencyType" binding:"required,oneof=mind_gems fluxon"`
	Memo         string  `json:"memo,omitempty" binding:"omitempty,max=200"`
	Password     string  `json:"password" binding:"required"`
	RequestID    string  `json:"requestId,omitempty" binding:"omitempty,safe_id,max=100"`
}

// SendResponse is the success envelope for a completed transfer.
type SendResponse struct {
	Success     bool                   `json:"success"`
	Transaction *ports.TransferReceipt `json:"transaction"`
}

// DecideRequest is the POST /oauth/authorize body: the consent screen's
// replayed parameters plus the user's decision.
type DecideRequest struct {
	ClientID            string `json:"client_id" binding:"required"`
	RedirectURI         string `json:"redirect_uri" binding:"omitempty,safe_url"`
	Scope               string `json:"scope,omitempty"`
	State               string `json:"state,omitempty"`
	CodeChallenge       string `json:"code_challenge,omitempty"`
	CodeChallengeMethod string `json:"code_challenge_method,omitempty"`
	Decision            string `json:"decision" binding:"required,oneof=approve deny"`
}

// DecideResponse carries the redirect target back to the consent screen.
type DecideResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// HealthResponse reports overall and per-dependency health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
