package response

import (
	"errors"
	"net/http"

	"catalystwells-core/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the wallet-facing error envelope: a human message plus a
// stable machine-readable code for client-side branching.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// OK sends a 200 response with the given body as-is.
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Error maps an error to the wallet error envelope. Internal error details
// are never echoed; unknown errors collapse to a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorBody{Error: appErr.Message, Code: appErr.Code})
		return
	}

	var oauthErr *apperror.OAuthError
	if errors.As(err, &oauthErr) {
		OAuthError(c, oauthErr)
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorBody{
		Error: "Internal server error",
		Code:  "INTERNAL_ERROR",
	})
}

// OAuthError writes the RFC 6749 {error, error_description} pair.
func OAuthError(c *gin.Context, err error) {
	var oauthErr *apperror.OAuthError
	if !errors.As(err, &oauthErr) {
		oauthErr = apperror.ErrOAuthServerError(nil)
	}
	c.JSON(oauthErr.HTTPStatus, gin.H{
		"error":             oauthErr.Code,
		"error_description": oauthErr.Description,
	})
}
