package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"catalystwells-core/internal/core/domain"
	"catalystwells-core/internal/core/ports"
	"catalystwells-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OAuthServiceImpl implements the authorization-code grant (RFC 6749 §4.1)
// with optional PKCE (RFC 7636) for the developer portal.
type OAuthServiceImpl struct {
	clientRepo ports.OAuthClientRepository
	codeRepo   ports.AuthorizationCodeRepository
	grantRepo  ports.GrantRepository
	scopeRepo  ports.ScopeRepository
	auditSvc   ports.AuditService
	loginURL   string
	log        zerolog.Logger
}

// NewOAuthService creates a new OAuthServiceImpl. loginURL is the main-app
// login page unauthenticated users are sent to.
func NewOAuthService(
	clientRepo ports.OAuthClientRepository,
	codeRepo ports.AuthorizationCodeRepository,
	grantRepo ports.GrantRepository,
	scopeRepo ports.ScopeRepository,
	auditSvc ports.AuditService,
	loginURL string,
	log zerolog.Logger,
) *OAuthServiceImpl {
	return &OAuthServiceImpl{
		clientRepo: clientRepo,
		codeRepo:   codeRepo,
		grantRepo:  grantRepo,
		scopeRepo:  scopeRepo,
		auditSvc:   auditSvc,
		loginURL:   loginURL,
		log:        log,
	}
}

// Authorize handles GET /oauth/authorize: validates the request, resolves
// consent, and either redirects (login required, auto-approval) or returns
// consent-screen data.
func (s *OAuthServiceImpl) Authorize(ctx context.Context, req ports.AuthorizeRequest) (*ports.AuthorizeResult, error) {
	client, redirectURI, scopes, err := s.validateRequest(ctx, req.ClientID, req.ResponseType, req.RedirectURI, req.Scope)
	if err != nil {
		return nil, err
	}

	// No session: suspend the flow across the login round-trip. The user
	// re-invokes the same URL after authentication.
	if req.User == nil {
		login, err := url.Parse(s.loginURL)
		if err != nil {
			return nil, apperror.ErrOAuthServerError(fmt.Errorf("parse login url: %w", err))
		}
		q := login.Query()
		q.Set("return_to", req.RequestURL)
		login.RawQuery = q.Encode()
		return &ports.AuthorizeResult{RedirectURL: login.String()}, nil
	}

	// A prior grant covering every requested scope auto-approves the flow.
	grant, err := s.grantRepo.GetActive(ctx, domain.AsUser(req.User.ID), req.User.ID, client.ID)
	if err != nil {
		return nil, apperror.ErrOAuthServerError(fmt.Errorf("load grant: %w", err))
	}
	if grant != nil && grant.Covers(scopes) {
		redirectURL, err := s.issueCode(ctx, client, *req.User, redirectURI, scopes,
			req.CodeChallenge, req.CodeChallengeMethod, req.State)
		if err != nil {
			return nil, err
		}
		s.log.Info().
			Str("client_id", client.ClientID).
			Str("user_id", req.User.ID.String()).
			Msg("authorization auto-approved from existing grant")
		return &ports.AuthorizeResult{RedirectURL: redirectURL}, nil
	}

	scopeDetails, err := s.scopeRepo.ListByNames(ctx, scopes)
	if err != nil || len(scopeDetails) == 0 {
		if err != nil {
			s.log.Warn().Err(err).Msg("scope definitions lookup failed, using scope names")
		}
		scopeDetails = make([]domain.ScopeDefinition, 0, len(scopes))
		for _, name := range scopes {
			scopeDetails = append(scopeDetails, domain.ScopeDefinition{Name: name, DisplayName: name})
		}
	}

	return &ports.AuthorizeResult{
		Consent: &ports.ConsentData{
			App:    client,
			Scopes: scopeDetails,
			User:   *req.User,
			Params: ports.AuthorizeParams{
				ClientID:            req.ClientID,
				RedirectURI:         redirectURI,
				Scope:               strings.Join(scopes, " "),
				State:               req.State,
				CodeChallenge:       req.CodeChallenge,
				CodeChallengeMethod: req.CodeChallengeMethod,
			},
		},
	}, nil
}

// Decide handles POST /oauth/authorize: carries the state machine from
// AWAITING_CONSENT to CODE_ISSUED or access_denied. It returns the final
// redirect URL for the caller to follow.
func (s *OAuthServiceImpl) Decide(ctx context.Context, req ports.ConsentDecision) (string, error) {
	client, err := s.clientRepo.GetByClientID(ctx, req.ClientID)
	if err != nil {
		return "", apperror.ErrOAuthServerError(fmt.Errorf("load client: %w", err))
	}
	if client == nil {
		return "", apperror.ErrOAuthInvalidClient()
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		if len(client.RedirectURIs) == 0 {
			return "", apperror.ErrOAuthInvalidRedirectURI()
		}
		redirectURI = client.RedirectURIs[0]
	}

	if req.Decision == "deny" {
		target, err := url.Parse(redirectURI)
		if err != nil {
			return "", apperror.ErrOAuthInvalidRedirectURI()
		}
		q := target.Query()
		q.Set("error", apperror.OAuthAccessDenied)
		q.Set("error_description", "User denied the authorization request")
		if req.State != "" {
			q.Set("state", req.State)
		}
		target.RawQuery = q.Encode()
		return target.String(), nil
	}

	scopes := parseScopes(req.Scope)

	redirectURL, err := s.issueCode(ctx, client, req.User, redirectURI, scopes,
		req.CodeChallenge, req.CodeChallengeMethod, req.State)
	if err != nil {
		return "", err
	}

	if err := s.upsertGrant(ctx, req.User.ID, client.ID, scopes); err != nil {
		return "", err
	}

	userID := req.User.ID
	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		Action:       domain.AuditActionUserAuthorized,
		ResourceType: "authorization",
		ResourceID:   client.ClientID,
		Details:      fmt.Sprintf(`{"scopes":"%s"}`, strings.Join(scopes, " ")),
		IPAddress:    req.ClientIP,
		CreatedAt:    time.Now().UTC(),
	})

	return redirectURL, nil
}

// validateRequest is the START -> VALIDATED transition.
func (s *OAuthServiceImpl) validateRequest(ctx context.Context, clientID, responseType, redirectURI, scope string) (*domain.OAuthClient, string, []string, error) {
	if clientID == "" {
		return nil, "", nil, apperror.ErrOAuthInvalidRequest("Missing client_id parameter")
	}
	if responseType != "code" {
		return nil, "", nil, apperror.ErrOAuthUnsupportedResponseType()
	}

	client, err := s.clientRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, "", nil, apperror.ErrOAuthServerError(fmt.Errorf("load client: %w", err))
	}
	if client == nil {
		return nil, "", nil, apperror.ErrOAuthInvalidClient()
	}
	if !client.MayAuthorize() {
		return nil, "", nil, apperror.ErrOAuthUnauthorizedClient()
	}

	if redirectURI != "" {
		if !MatchRedirectURI(redirectURI, client.RedirectURIs) {
			return nil, "", nil, apperror.ErrOAuthInvalidRedirectURI()
		}
	} else {
		if len(client.RedirectURIs) == 0 {
			return nil, "", nil, apperror.ErrOAuthInvalidRedirectURI()
		}
		redirectURI = client.RedirectURIs[0]
	}

	scopes := parseScopes(scope)
	if invalid := invalidScopes(scopes, client.EffectiveScopes()); len(invalid) > 0 {
		return nil, "", nil, apperror.ErrOAuthInvalidScope(invalid)
	}

	return client, redirectURI, scopes, nil
}

// issueCode persists a fresh authorization code and returns the redirect
// URL carrying code and state. The PKCE challenge and method are stored
// verbatim; verification belongs to the token-exchange step.
func (s *OAuthServiceImpl) issueCode(ctx context.Context, client *domain.OAuthClient, user ports.SessionUser, redirectURI string, scopes []string, codeChallenge, codeChallengeMethod, state string) (string, error) {
	target, err := url.Parse(redirectURI)
	if err != nil {
		return "", apperror.ErrOAuthInvalidRedirectURI()
	}

	code := &domain.AuthorizationCode{
		Code:                domain.NewAuthorizationCode(),
		ApplicationID:       client.ID,
		UserID:              user.ID,
		RedirectURI:         redirectURI,
		Scopes:              scopes,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		ExpiresAt:           time.Now().UTC().Add(domain.AuthCodeTTL),
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.codeRepo.Create(ctx, code); err != nil {
		return "", apperror.ErrOAuthServerError(fmt.Errorf("store authorization code: %w", err))
	}

	q := target.Query()
	q.Set("code", code.Code)
	if state != "" {
		q.Set("state", state)
	}
	target.RawQuery = q.Encode()
	return target.String(), nil
}

// upsertGrant records the consent: a new grant gets exactly the granted
// scopes; an existing grant's scope set becomes the union of old and new.
func (s *OAuthServiceImpl) upsertGrant(ctx context.Context, userID, applicationID uuid.UUID, scopes []string) error {
	existing, err := s.grantRepo.GetActive(ctx, domain.AsUser(userID), userID, applicationID)
	if err != nil {
		return apperror.ErrOAuthServerError(fmt.Errorf("load grant: %w", err))
	}
	if existing != nil {
		merged := domain.MergeScopes(existing.GrantedScopes, scopes)
		if err := s.grantRepo.UpdateScopes(ctx, existing.ID, merged); err != nil {
			return apperror.ErrOAuthServerError(fmt.Errorf("update grant: %w", err))
		}
		return nil
	}

	now := time.Now().UTC()
	if err := s.grantRepo.Create(ctx, &domain.UserAuthorization{
		ID:            uuid.New(),
		UserID:        userID,
		ApplicationID: applicationID,
		GrantedScopes: scopes,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		return apperror.ErrOAuthServerError(fmt.Errorf("create grant: %w", err))
	}
	return nil
}

// MatchRedirectURI checks a requested redirect URI against the registered
// list under three rules, in order: exact equality; wildcard match where
// any '*' in a registered URI matches any character sequence (development
// convenience); same-origin with registered-path prefix.
func MatchRedirectURI(requested string, registered []string) bool {
	requestedURL, err := url.Parse(requested)
	if err != nil {
		return false
	}

	for _, allowed := range registered {
		if requested == allowed {
			return true
		}

		if strings.Contains(allowed, "*") {
			pattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(allowed), `\*`, ".*") + "$"
			if re, err := regexp.Compile(pattern); err == nil && re.MatchString(requested) {
				return true
			}
		}

		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if requestedURL.Scheme == allowedURL.Scheme &&
			requestedURL.Host == allowedURL.Host &&
			strings.HasPrefix(requestedURL.Path, allowedURL.Path) {
			return true
		}
	}
	return false
}

// parseScopes splits the space-delimited scope parameter, defaulting to
// profile.read when empty.
func parseScopes(scope string) []string {
	scopes := strings.Fields(scope)
	if len(scopes) == 0 {
		return []string{domain.DefaultScope}
	}
	return scopes
}

// invalidScopes returns the requested scopes outside the allowed set.
// The openid scope is always implicitly allowed.
func invalidScopes(requested, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		allowedSet[s] = struct{}{}
	}
	var invalid []string
	for _, s := range requested {
		if s == domain.ScopeOpenID {
			continue
		}
		if _, ok := allowedSet[s]; !ok {
			invalid = append(invalid, s)
		}
	}
	return invalid
}
