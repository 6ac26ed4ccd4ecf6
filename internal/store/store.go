package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"kudos/internal/feed"
	"kudos/internal/models"
)

// ErrNotFound is returned when a referenced user does not exist.
var ErrNotFound = errors.New("not found")

// RecentLimit is how many kudos the recent bar shows.
const RecentLimit = 3

// Store defines the persistence operations behind the HTTP handlers.
// Postgres, Memory and Cached implement it.
type Store interface {
	Ping(ctx context.Context) error

	// User operations
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	OtherProfiles(ctx context.Context, id uuid.UUID) ([]models.Profile, error)
	SetProfilePicture(ctx context.Context, id uuid.UUID, locator string) error

	// Kudo operations
	FilteredKudos(ctx context.Context, recipientID uuid.UUID, sort feed.Sort, filter feed.Predicate) ([]models.Kudo, error)
	RecentKudos(ctx context.Context, limit int) ([]models.Kudo, error)
	CreateKudo(ctx context.Context, in models.NewKudo) (*models.Kudo, error)
}
