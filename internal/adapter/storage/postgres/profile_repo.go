package postgres

import (
	"context"
	"errors"
	"fmt"

	"catalystwells-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ports.ProfileRepository.
type ProfileRepo struct {
	pool Pool
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(pool Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, user_id, first_name, last_name, student_tag, role, gems`

// GetByUserID fetches a profile by its owning user.
func (r *ProfileRepo) GetByUserID(ctx context.Context, trust domain.TrustLevel, userID uuid.UUID) (*domain.Profile, error) {
	if !trust.Permits(userID) {
		return nil, fmt.Errorf("access denied: user %s cannot read profile of %s", trust.UserID(), userID)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return r.scanProfile(r.pool.QueryRow(ctx, query, userID))
}

// GetByStudentTag resolves a profile by its shareable student tag. Tag
// lookup crosses user boundaries and requires system trust.
func (r *ProfileRepo) GetByStudentTag(ctx context.Context, trust domain.TrustLevel, tag string) (*domain.Profile, error) {
	if !trust.IsSystem() {
		return nil, fmt.Errorf("access denied: student tag lookup requires system trust")
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE student_tag = $1`
	return r.scanProfile(r.pool.QueryRow(ctx, query, tag))
}

// UpdateGems mirrors a wallet's mind-gems balance onto the profile row.
func (r *ProfileRepo) UpdateGems(ctx context.Context, trust domain.TrustLevel, userID uuid.UUID, gems int64) error {
	if !trust.IsSystem() {
		return fmt.Errorf("access denied: gems mirror requires system trust")
	}

	query := `UPDATE profiles SET gems = $1 WHERE user_id = $2`
	if _, err := r.pool.Exec(ctx, query, gems, userID); err != nil {
		return fmt.Errorf("update profile gems: %w", err)
	}
	return nil
}

func (r *ProfileRepo) scanProfile(row pgx.Row) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.StudentTag, &p.Role, &p.Gems)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}
