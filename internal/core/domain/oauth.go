package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// OAuthClient is a registered third-party developer application.
// Created by developer registration; read-only to the authorization flow.
type OAuthClient struct {
	ID               uuid.UUID `json:"id"`
	ClientID         string    `json:"client_id"`
	DeveloperID      uuid.UUID `json:"-"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	LogoURL          string    `json:"logo_url,omitempty"`
	WebsiteURL       string    `json:"website_url,omitempty"`
	PrivacyPolicyURL string    `json:"privacy_policy_url,omitempty"`
	RedirectURIs     []string  `json:"redirect_uris"`
	AllowedScopes    []string  `json:"allowed_scopes"`
	RequestedScopes  []string  `json:"requested_scopes"`
	Status           string    `json:"status"`      // pending, approved, suspended
	Environment      string    `json:"environment"` // sandbox, production
	IsVerified       bool      `json:"is_verified"`
	TrustTier        string    `json:"trust_level,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MayAuthorize reports whether the client can enter the authorization flow:
// globally approved, or still running in its sandbox environment.
func (c *OAuthClient) MayAuthorize() bool {
	return c.Status == "approved" || c.Environment == "sandbox"
}

// EffectiveScopes is the allow-list scopes are validated against: the
// explicit allow-list when non-empty, else the originally requested set.
func (c *OAuthClient) EffectiveScopes() []string {
	if len(c.AllowedScopes) > 0 {
		return c.AllowedScopes
	}
	return c.RequestedScopes
}

// DefaultScope is granted when an authorization request names no scopes.
const DefaultScope = "profile.read"

// ScopeOpenID is implicitly allowed for every client.
const ScopeOpenID = "openid"

// AuthCodeTTL is the absolute validity window of an authorization code.
const AuthCodeTTL = 10 * time.Minute

const authCodePrefix = "cw_ac_"

// NewAuthorizationCode generates a fresh code: cw_ac_ + 64 lowercase hex
// characters (32 bytes of randomness).
func NewAuthorizationCode() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return authCodePrefix + hex.EncodeToString(buf)
}

// AuthorizationCode is a single-use, short-lived token binding a user, a
// client, a redirect URI and the granted scopes. The PKCE challenge and
// method are stored verbatim; verification happens at code exchange.
type AuthorizationCode struct {
	Code                string    `json:"code"`
	ApplicationID       uuid.UUID `json:"application_id"`
	UserID              uuid.UUID `json:"user_id"`
	RedirectURI         string    `json:"redirect_uri"`
	Scopes              []string  `json:"scopes"`
	CodeChallenge       string    `json:"code_challenge,omitempty"`
	CodeChallengeMethod string    `json:"code_challenge_method,omitempty"`
	ExpiresAt           time.Time `json:"expires_at"`
	CreatedAt           time.Time `json:"created_at"`
}

// IsExpired reports whether the code's validity window has passed.
func (c *AuthorizationCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// UserAuthorization is the durable record of scopes a user has granted to a
// client. Upserted with a scope-set union on each new consent; never
// automatically revoked.
type UserAuthorization struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	ApplicationID uuid.UUID `json:"application_id"`
	GrantedScopes []string  `json:"granted_scopes"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Covers reports whether every requested scope is already granted.
func (a *UserAuthorization) Covers(requested []string) bool {
	granted := make(map[string]struct{}, len(a.GrantedScopes))
	for _, s := range a.GrantedScopes {
		granted[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// MergeScopes returns the deduplicated union of old and new scope sets,
// preserving first-seen order.
func MergeScopes(old, new []string) []string {
	seen := make(map[string]struct{}, len(old)+len(new))
	merged := make([]string, 0, len(old)+len(new))
	for _, s := range append(append([]string{}, old...), new...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		merged = append(merged, s)
	}
	return merged
}

// ScopeDefinition is the human-readable description of a scope shown on the
// consent screen.
type ScopeDefinition struct {
	Name        string `json:"scope_name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}
