package domain

import "github.com/google/uuid"

// Profile is the denormalized user profile row the dashboard reads. The
// gems field mirrors the wallet's mind-gems balance and is refreshed
// best-effort after each gem transfer.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	StudentTag string    `json:"student_tag"`
	Role       string    `json:"role"`
	Gems       int64     `json:"gems"`
}
