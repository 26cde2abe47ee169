package postgres

import (
	"context"
	"errors"
	"fmt"

	"catalystwells-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OAuthClientRepo reads registered developer applications.
type OAuthClientRepo struct {
	pool Pool
}

// NewOAuthClientRepo creates a new OAuthClientRepo.
func NewOAuthClientRepo(pool Pool) *OAuthClientRepo {
	return &OAuthClientRepo{pool: pool}
}

// GetByClientID fetches a client by its public client_id, or nil when
// unknown.
func (r *OAuthClientRepo) GetByClientID(ctx context.Context, clientID string) (*domain.OAuthClient, error) {
	query := `SELECT id, client_id, developer_id, name, description, logo_url,
			website_url, privacy_policy_url, redirect_uris, allowed_scopes,
			requested_scopes, status, environment, is_verified, trust_level,
			created_at, updated_at
		FROM oauth_applications WHERE client_id = $1`

	c := &domain.OAuthClient{}
	err := r.pool.QueryRow(ctx, query, clientID).Scan(
		&c.ID, &c.ClientID, &c.DeveloperID, &c.Name, &c.Description, &c.LogoURL,
		&c.WebsiteURL, &c.PrivacyPolicyURL, &c.RedirectURIs, &c.AllowedScopes,
		&c.RequestedScopes, &c.Status, &c.Environment, &c.IsVerified, &c.TrustTier,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get oauth client: %w", err)
	}
	return c, nil
}

// AuthCodeRepo persists issued authorization codes.
type AuthCodeRepo struct {
	pool Pool
}

// NewAuthCodeRepo creates a new AuthCodeRepo.
func NewAuthCodeRepo(pool Pool) *AuthCodeRepo {
	return &AuthCodeRepo{pool: pool}
}

// Create stores a freshly issued code.
func (r *AuthCodeRepo) Create(ctx context.Context, code *domain.AuthorizationCode) error {
	query := `INSERT INTO oauth_authorization_codes
		(code, application_id, user_id, redirect_uri, scopes,
		 code_challenge, code_challenge_method, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	_, err := r.pool.Exec(ctx, query,
		code.Code, code.ApplicationID, code.UserID, code.RedirectURI, code.Scopes,
		code.CodeChallenge, code.CodeChallengeMethod, code.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create authorization code: %w", err)
	}
	return nil
}

// GrantRepo manages durable user-consent records.
type GrantRepo struct {
	pool Pool
}

// NewGrantRepo creates a new GrantRepo.
func NewGrantRepo(pool Pool) *GrantRepo {
	return &GrantRepo{pool: pool}
}

// GetActive returns the user's active grant for an application, or nil.
func (r *GrantRepo) GetActive(ctx context.Context, trust domain.TrustLevel, userID, applicationID uuid.UUID) (*domain.UserAuthorization, error) {
	if !trust.Permits(userID) {
		return nil, fmt.Errorf("access denied: user %s cannot read grants of %s", trust.UserID(), userID)
	}

	query := `SELECT id, user_id, application_id, granted_scopes, is_active, created_at, updated_at
		FROM oauth_user_authorizations
		WHERE user_id = $1 AND application_id = $2 AND is_active = true`

	g := &domain.UserAuthorization{}
	err := r.pool.QueryRow(ctx, query, userID, applicationID).Scan(
		&g.ID, &g.UserID, &g.ApplicationID, &g.GrantedScopes, &g.IsActive,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active grant: %w", err)
	}
	return g, nil
}

// Create inserts a new grant.
func (r *GrantRepo) Create(ctx context.Context, grant *domain.UserAuthorization) error {
	query := `INSERT INTO oauth_user_authorizations
		(user_id, application_id, granted_scopes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())`

	_, err := r.pool.Exec(ctx, query,
		grant.UserID, grant.ApplicationID, grant.GrantedScopes, grant.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create grant: %w", err)
	}
	return nil
}

// UpdateScopes replaces a grant's scope set with the merged union.
func (r *GrantRepo) UpdateScopes(ctx context.Context, id uuid.UUID, scopes []string) error {
	query := `UPDATE oauth_user_authorizations
		SET granted_scopes = $1, updated_at = NOW()
		WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, scopes, id)
	if err != nil {
		return fmt.Errorf("update grant scopes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("grant not found: %s", id)
	}
	return nil
}

// ScopeRepo reads the consent-screen descriptions of scopes.
type ScopeRepo struct {
	pool Pool
}

// NewScopeRepo creates a new ScopeRepo.
func NewScopeRepo(pool Pool) *ScopeRepo {
	return &ScopeRepo{pool: pool}
}

// ListByNames returns the definitions for the named scopes. Unknown names
// are simply absent from the result.
func (r *ScopeRepo) ListByNames(ctx context.Context, names []string) ([]domain.ScopeDefinition, error) {
	query := `SELECT scope_name, display_name, description
		FROM oauth_scopes WHERE scope_name = ANY($1)`

	rows, err := r.pool.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	defer rows.Close()

	var defs []domain.ScopeDefinition
	for rows.Next() {
		var d domain.ScopeDefinition
		if err := rows.Scan(&d.Name, &d.DisplayName, &d.Description); err != nil {
			return nil, fmt.Errorf("scan scope: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scopes: %w", err)
	}
	return defs, nil
}
