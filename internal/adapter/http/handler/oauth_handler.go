package handler

import (
	"net/http"

	"catalystwells-core/internal/adapter/http/dto"
	"catalystwells-core/internal/adapter/http/middleware"
	"catalystwells-core/internal/core/ports"
	"catalystwells-core/pkg/apperror"
	"catalystwells-core/pkg/response"

	"github.com/gin-gonic/gin"
)

// OAuthHandler handles the authorization endpoint of the OAuth flow.
type OAuthHandler struct {
	oauthSvc ports.OAuthService
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(oauthSvc ports.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauthSvc: oauthSvc}
}

// Authorize handles GET /oauth/authorize. The outcome is either a redirect
// (login required, or an existing grant covers the request and a code was
// issued) or the consent-screen payload.
func (h *OAuthHandler) Authorize(c *gin.Context) {
	req := ports.AuthorizeRequest{
		ClientID:            c.Query("client_id"),
		RedirectURI:         c.Query("redirect_uri"),
		ResponseType:        c.Query("response_type"),
		Scope:               c.Query("scope"),
		State:               c.Query("state"),
		CodeChallenge:       c.Query("code_challenge"),
		CodeChallengeMethod: c.Query("code_challenge_method"),
		User:                middleware.SessionUser(c),
		RequestURL:          c.Request.URL.RequestURI(),
	}

	result, err := h.oauthSvc.Authorize(c.Request.Context(), req)
	if err != nil {
		response.OAuthError(c, err)
		return
	}

	if result.RedirectURL != "" {
		c.Redirect(http.StatusFound, result.RedirectURL)
		return
	}
	response.OK(c, result.Consent)
}

// Decide handles POST /oauth/authorize: the consent screen's approve or
// deny submission. Both outcomes yield a redirect target for the client.
func (h *OAuthHandler) Decide(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.OAuthError(c, apperror.ErrOAuthInvalidRequest(err.Error()))
		return
	}

	redirectURL, err := h.oauthSvc.Decide(c.Request.Context(), ports.ConsentDecision{
		ClientID:            req.ClientID,
		RedirectURI:         req.RedirectURI,
		Scope:               req.Scope,
		State:               req.State,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		Decision:            req.Decision,
		User:                *user,
		ClientIP:            c.ClientIP(),
	})
	if err != nil {
		response.OAuthError(c, err)
		return
	}

	response.OK(c, dto.DecideResponse{RedirectURL: redirectURL})
}
