package repositories

import (
	"context"
	"fmt"

	"lostfound/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// List retrieves items matching filter, priority items first, then most
// recent by date.
func (r *GORMItemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	q := r.db.WithContext(ctx).Model(&models.Item{})
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.CreatedBy != "" {
		q = q.Where("created_by = ?", filter.CreatedBy)
	}

	var items []models.Item
	if err := q.Order("priority DESC").Order("date DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single item by its ID from the database.
func (r *GORMItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get item by ID %s: %w", id, translate(err))
	}
	return &item, nil
}

// GetByIDs loads every listed item. Unknown IDs are absent from the result.
func (r *GORMItemRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Item, error) {
	result := make(map[string]*models.Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var items []models.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items by IDs: %w", err)
	}
	for i := range items {
		result[items[i].ID] = &items[i]
	}
	return result, nil
}

// Create creates a new item in the database.
func (r *GORMItemRepository) Create(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", translate(err))
	}
	return nil
}

// Update saves every field of an existing item, provided its stored status
// still equals expected. A changed status reports ErrStateChanged.
func (r *GORMItemRepository) Update(ctx context.Context, item *models.Item, expected models.ItemStatus) error {
	res := r.db.WithContext(ctx).Model(item).
		Where("status = ?", expected).
		Select("*").Omit("id", "created_at").
		Updates(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update item: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", item.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check item %s: %w", item.ID, err)
	}
	if count == 0 {
		return fmt.Errorf("item with ID %s not found for update: %w", item.ID, ErrNotFound)
	}
	return fmt.Errorf("item %s is no longer %s: %w", item.ID, expected, ErrStateChanged)
}

// Delete deletes an item by its ID from the database.
func (r *GORMItemRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// Approve moves a submitted item to approved and records the admin.
func (r *GORMItemRepository) Approve(ctx context.Context, id, adminID string) error {
	res := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND status = ?", id, models.ItemStatusSubmitted).
		Updates(map[string]any{
			"status":      models.ItemStatusApproved,
			"approved_by": adminID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to approve item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %s is not awaiting approval: %w", id, ErrStateChanged)
	}
	return nil
}

// MarkReturned sets status returned and claimed_by, only if the item has
// not been returned yet.
func (r *GORMItemRepository) MarkReturned(ctx context.Context, id, claimantID string) error {
	res := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND status <> ?", id, models.ItemStatusReturned).
		Updates(map[string]any{
			"status":     models.ItemStatusReturned,
			"claimed_by": claimantID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark item %s returned: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %s already returned: %w", id, ErrStateChanged)
	}
	return nil
}
