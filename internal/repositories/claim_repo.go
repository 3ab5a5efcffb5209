package repositories

import (
	"context"
	"time"

	"lostfound/internal/models"
)

// ClaimDecision is the outcome written by a verification.
type ClaimDecision struct {
	Status          models.ClaimStatus
	RejectionReason string
	VerifiedBy      string
	VerifiedAt      time.Time
}

// ClaimRepository defines the interface for claim data access.
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id string) (*models.Claim, error)
	ListByClaimant(ctx context.Context, claimantID string) ([]models.Claim, error)
	ListByStatus(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error)
	// HasPending reports whether claimantID already has a pending claim on itemID.
	HasPending(ctx context.Context, claimantID, itemID string) (bool, error)
	// Decide writes a decision to a pending claim. Claims are never deleted
	// and are decided at most once.
	Decide(ctx context.Context, id string, decision ClaimDecision) error
}
