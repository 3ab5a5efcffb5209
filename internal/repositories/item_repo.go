package repositories

import (
	"context"

	"lostfound/internal/models"
)

// ItemFilter narrows List results. Zero values mean "any".
type ItemFilter struct {
	Statuses  []models.ItemStatus
	Category  models.Category
	CreatedBy string
}

// ItemRepository defines the interface for item data access.
type ItemRepository interface {
	List(ctx context.Context, filter ItemFilter) ([]models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	// Update writes item only while its stored status is still expected.
	Update(ctx context.Context, item *models.Item, expected models.ItemStatus) error
	Delete(ctx context.Context, id string) error
	// Approve moves a submitted item to approved.
	Approve(ctx context.Context, id, adminID string) error
	// MarkReturned records the claimant and moves the item to returned
	// unless it already is.
	MarkReturned(ctx context.Context, id, claimantID string) error
}
