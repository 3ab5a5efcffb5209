package services

import (
	"context"
	"strings"

	"lostfound/internal/models"
	"lostfound/internal/repositories"
	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"
	"lostfound/pkg/metrics"
)

// ClaimService files and reads ownership claims. Decisions go through
// VerificationService.
type ClaimService struct {
	claims  repositories.ClaimRepository
	items   repositories.ItemRepository
	users   repositories.UserRepository
	events  eventEmitter
	logg    *logger.Logger
	metrics *metrics.Metrics
}

// NewClaimService creates a new ClaimService. events and m may be nil.
func NewClaimService(claims repositories.ClaimRepository, items repositories.ItemRepository, users repositories.UserRepository, events EventPublisher, logg *logger.Logger, m *metrics.Metrics) *ClaimService {
	logg = orNop(logg)
	return &ClaimService{
		claims:  claims,
		items:   items,
		users:   users,
		events:  eventEmitter{publisher: events, logg: logg},
		logg:    logg,
		metrics: m,
	}
}

// CreateClaimInput is the payload for filing a claim.
type CreateClaimInput struct {
	ItemID      string `json:"itemId" validate:"required"`
	Identifiers string `json:"identifiers" validate:"required,max=500"`
	Notes       string `json:"notes" validate:"max=500"`
}

// Create files a pending claim by the caller against an existing item.
func (s *ClaimService) Create(ctx context.Context, actor models.Actor, in CreateClaimInput) (*models.ClaimDetail, error) {
	in.ItemID = strings.TrimSpace(in.ItemID)
	in.Identifiers = strings.TrimSpace(in.Identifiers)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, notFoundOr(err, "Item not found", "failed to load item")
	}
	if item.Status == models.ItemStatusSubmitted && !actor.CanModify(item.CreatedBy) {
		return nil, apperror.NotFound("Item not found")
	}
	if item.Status == models.ItemStatusReturned {
		return nil, apperror.StateConflict("Item has already been returned to its owner")
	}
	pending, err := s.claims.HasPending(ctx, actor.UserID, item.ID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to check existing claims")
	}
	if pending {
		return nil, apperror.Conflict("You already have a pending claim for this item")
	}

	claim := &models.Claim{
		ClaimantID:  actor.UserID,
		ItemID:      item.ID,
		Identifiers: in.Identifiers,
		Notes:       in.Notes,
		Status:      models.ClaimStatusPending,
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, apperror.Internal(err, "failed to create claim")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"claim_id": claim.ID, "item_id": item.ID, "user_id": actor.UserID})
	s.logg.Info(ctx, "claim filed")
	s.metrics.IncClaimsFiled()
	s.events.emit(ctx, Event{Type: EventClaimCreated, ActorID: actor.UserID, ClaimID: claim.ID, ItemID: item.ID})

	detail := &models.ClaimDetail{Claim: *claim, Item: item.Summary()}
	if claimant, err := s.users.GetByID(ctx, actor.UserID); err == nil {
		detail.Claimant = claimant.Summary()
	}
	return detail, nil
}

// ListMine returns the caller's claims, newest first.
func (s *ClaimService) ListMine(ctx context.Context, actor models.Actor) ([]models.ClaimDetail, error) {
	claims, err := s.claims.ListByClaimant(ctx, actor.UserID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list claims")
	}
	return s.details(ctx, claims)
}

// Get returns one claim to its claimant or an admin.
func (s *ClaimService) Get(ctx context.Context, actor models.Actor, id string) (*models.ClaimDetail, error) {
	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Claim not found", "failed to load claim")
	}
	if !actor.CanModify(claim.ClaimantID) {
		return nil, apperror.Forbidden("You can only view your own claims")
	}
	details, err := s.details(ctx, []models.Claim{*claim})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListPending returns claims awaiting verification, newest first.
func (s *ClaimService) ListPending(ctx context.Context, actor models.Actor) ([]models.ClaimDetail, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	claims, err := s.claims.ListByStatus(ctx, models.ClaimStatusPending)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list pending claims")
	}
	return s.details(ctx, claims)
}

func (s *ClaimService) details(ctx context.Context, claims []models.Claim) ([]models.ClaimDetail, error) {
	out, err := claimDetails(ctx, s.items, s.users, claims)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load claim details")
	}
	return out, nil
}
