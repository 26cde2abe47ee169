package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet transfer (WALLET) ----

func ErrWalletNotFound() *AppError {
	return New("WALLET_NOT_FOUND",
		"Sender wallet not found. Please create a wallet first.",
		http.StatusNotFound)
}

func ErrPasswordNotSet() *AppError {
	return New("PASSWORD_NOT_SET",
		"Transaction password not set up. Please set up your transaction password first.",
		http.StatusBadRequest)
}

func ErrRecipientNotFound() *AppError {
	return New("RECIPIENT_NOT_FOUND", "Recipient wallet not found", http.StatusNotFound)
}

func ErrInvalidAmount() *AppError {
	return New("INVALID_AMOUNT", "Amount must be a positive number", http.StatusBadRequest)
}

func ErrLimitExceeded(message string) *AppError {
	return New("LIMIT_EXCEEDED", message, http.StatusBadRequest)
}

func ErrInvalidPassword() *AppError {
	return New("INVALID_PASSWORD", "Invalid transaction password", http.StatusUnauthorized)
}

func ErrWalletLocked() *AppError {
	return New("WALLET_LOCKED", "Wallet is locked", http.StatusForbidden)
}

func ErrInsufficientBalance() *AppError {
	return New("INSUFFICIENT_BALANCE", "Insufficient balance", http.StatusBadRequest)
}

func ErrDailyLimitExceeded() *AppError {
	return New("DAILY_LIMIT_EXCEEDED", "Daily limit exceeded", http.StatusBadRequest)
}

func ErrTransactionFailed(err error) *AppError {
	return Wrap("TRANSACTION_FAILED", "Failed to complete transaction", http.StatusInternalServerError, err)
}

// ---- Authentication & sessions (AUTH) ----

func ErrUnauthorized() *AppError {
	return New("UNAUTHORIZED", "Unauthorized", http.StatusUnauthorized)
}

func ErrInvalidSession() *AppError {
	return New("INVALID_SESSION", "Invalid or expired session", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("FORBIDDEN", "Access denied", http.StatusForbidden)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_LIMITED", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & infrastructure (SYS) ----

// InternalError wraps an internal error; the message shown to the client
// is deliberately generic, the wrapped error goes to the server log only.
func InternalError(err error) *AppError {
	return Wrap("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic input validation error.
func Validation(message string) *AppError {
	return New("VALIDATION_ERROR", message, http.StatusBadRequest)
}
