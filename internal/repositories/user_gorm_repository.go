package repositories

import (
	"context"
	"fmt"

	"lostfound/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Badges == nil {
		user.Badges = models.Badges{}
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetByEmail retrieves a user by their (already normalized) email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, translate(err))
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, translate(err))
	}
	return &user, nil
}

// GetByIDs loads every user whose ID is listed. Unknown IDs are absent from
// the result.
func (r *GORMUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	result := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

// UpdateProfile persists the self-editable profile fields.
func (r *GORMUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"name":       user.Name,
		"phone":      user.Phone,
		"department": user.Department,
		"year":       user.Year,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, ErrNotFound)
	}
	return nil
}

// AwardPoints increments points in place and appends badge once. Callers
// that need atomicity with other writes run it inside a transaction.
func (r *GORMUserRepository) AwardPoints(ctx context.Context, id string, points int, badge string) (*models.User, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.User{}).Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", points))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to award points to user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("user with ID %s not found for award: %w", id, ErrNotFound)
	}

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user %s: %w", id, translate(err))
	}
	if user.Badges.Add(badge) {
		if err := db.Model(&user).Select("badges").Updates(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to grant badge to user %s: %w", id, err)
		}
	}
	return &user, nil
}

// Leaderboard returns the top non-admin users.
func (r *GORMUserRepository) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role <> ?", models.RoleAdmin).
		Order("points DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return users, nil
}
