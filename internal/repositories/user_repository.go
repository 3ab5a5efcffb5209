package repositories

import (
	"context"

	"lostfound/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	// AwardPoints adds points to the user and grants badge if not yet held.
	AwardPoints(ctx context.Context, id string, points int, badge string) (*models.User, error)
	// Leaderboard returns non-admin users ordered by points desc, then by
	// account age.
	Leaderboard(ctx context.Context, limit int) ([]models.User, error)
}
