package apperror

import (
	"fmt"
	"net/http"
	"strings"
)

// OAuth 2.0 error codes per RFC 6749 §4.1.2.1, plus the locally defined
// invalid_redirect_uri used before any redirect target is trusted.
const (
	OAuthInvalidRequest          = "invalid_request"
	OAuthInvalidClient           = "invalid_client"
	OAuthUnsupportedResponseType = "unsupported_response_type"
	OAuthUnauthorizedClient      = "unauthorized_client"
	OAuthInvalidRedirectURI      = "invalid_redirect_uri"
	OAuthInvalidScope            = "invalid_scope"
	OAuthAccessDenied            = "access_denied"
	OAuthServerError             = "server_error"
)

// OAuthError carries the RFC error vocabulary so any spec-compliant client
// library can parse responses uniformly.
type OAuthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	HTTPStatus  int    `json:"-"`
	Err         error  `json:"-"`
}

func (e *OAuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oauth %s: %s: %v", e.Code, e.Description, e.Err)
	}
	return fmt.Sprintf("oauth %s: %s", e.Code, e.Description)
}

func (e *OAuthError) Unwrap() error {
	return e.Err
}

func NewOAuth(code, description string, httpStatus int) *OAuthError {
	return &OAuthError{Code: code, Description: description, HTTPStatus: httpStatus}
}

func ErrOAuthInvalidRequest(description string) *OAuthError {
	return NewOAuth(OAuthInvalidRequest, description, http.StatusBadRequest)
}

func ErrOAuthInvalidClient() *OAuthError {
	return NewOAuth(OAuthInvalidClient, "Unknown client_id", http.StatusBadRequest)
}

func ErrOAuthUnsupportedResponseType() *OAuthError {
	return NewOAuth(OAuthUnsupportedResponseType,
		"Only authorization code flow is supported", http.StatusBadRequest)
}

func ErrOAuthUnauthorizedClient() *OAuthError {
	return NewOAuth(OAuthUnauthorizedClient,
		"Application is not approved for production use", http.StatusForbidden)
}

func ErrOAuthInvalidRedirectURI() *OAuthError {
	return NewOAuth(OAuthInvalidRedirectURI,
		"Redirect URI not registered for this application", http.StatusBadRequest)
}

func ErrOAuthInvalidScope(invalid []string) *OAuthError {
	return NewOAuth(OAuthInvalidScope,
		fmt.Sprintf("Invalid scopes: %s", strings.Join(invalid, ", ")),
		http.StatusBadRequest)
}

func ErrOAuthServerError(err error) *OAuthError {
	description := "Internal server error"
	if err != nil {
		description = err.Error()
	}
	return &OAuthError{
		Code:        OAuthServerError,
		Description: description,
		HTTPStatus:  http.StatusInternalServerError,
		Err:         err,
	}
}
