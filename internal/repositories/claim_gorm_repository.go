package repositories

import (
	"context"
	"fmt"

	"lostfound/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMClaimRepository is a GORM implementation of ClaimRepository.
type GORMClaimRepository struct {
	db *gorm.DB
}

// NewGORMClaimRepository creates a new instance of GORMClaimRepository.
func NewGORMClaimRepository(db *gorm.DB) *GORMClaimRepository {
	return &GORMClaimRepository{
		db: db,
	}
}

// Create creates a new claim in the database.
func (r *GORMClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	if claim.ID == "" {
		claim.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		return fmt.Errorf("failed to create claim: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a single claim by its ID.
func (r *GORMClaimRepository) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get claim by ID %s: %w", id, translate(err))
	}
	return &claim, nil
}

// ListByClaimant returns a user's claims, newest first.
func (r *GORMClaimRepository) ListByClaimant(ctx context.Context, claimantID string) ([]models.Claim, error) {
	var claims []models.Claim
	err := r.db.WithContext(ctx).
		Where("claimant_id = ?", claimantID).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list claims for %s: %w", claimantID, err)
	}
	return claims, nil
}

// ListByStatus returns claims in status, newest first.
func (r *GORMClaimRepository) ListByStatus(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error) {
	var claims []models.Claim
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s claims: %w", status, err)
	}
	return claims, nil
}

func (r *GORMClaimRepository) HasPending(ctx context.Context, claimantID, itemID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Claim{}).
		Where("claimant_id = ? AND item_id = ? AND status = ?", claimantID, itemID, models.ClaimStatusPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count pending claims: %w", err)
	}
	return count > 0, nil
}

// Decide updates a claim only while it is still pending.
func (r *GORMClaimRepository) Decide(ctx context.Context, id string, decision ClaimDecision) error {
	updates := map[string]any{
		"status":      decision.Status,
		"verified_by": decision.VerifiedBy,
		"verified_at": decision.VerifiedAt,
	}
	if decision.RejectionReason != "" {
		updates["rejection_reason"] = decision.RejectionReason
	}
	res := r.db.WithContext(ctx).Model(&models.Claim{}).
		Where("id = ? AND status = ?", id, models.ClaimStatusPending).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to decide claim %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("claim %s is no longer pending: %w", id, ErrStateChanged)
	}
	return nil
}
