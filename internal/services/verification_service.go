package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"lostfound/internal/models"
	"lostfound/internal/repositories"
	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"
	"lostfound/pkg/metrics"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"

	// HelperPoints is awarded to the finder when a claim on their item is
	// approved.
	HelperPoints = 10
)

// LeaderboardInvalidator drops cached rankings after points change.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// VerificationService adjudicates pending claims.
type VerificationService struct {
	store       repositories.Store
	leaderboard LeaderboardInvalidator
	events      eventEmitter
	logg        *logger.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewVerificationService creates a new VerificationService. leaderboard,
// events and m may be nil.
func NewVerificationService(store repositories.Store, leaderboard LeaderboardInvalidator, events EventPublisher, logg *logger.Logger, m *metrics.Metrics) *VerificationService {
	logg = orNop(logg)
	return &VerificationService{
		store:       store,
		leaderboard: leaderboard,
		events:      eventEmitter{publisher: events, logg: logg},
		logg:        logg,
		metrics:     m,
		now:         time.Now,
	}
}

// VerifyInput is the admin decision on a claim.
type VerifyInput struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Reason string `json:"reason" validate:"max=500"`
}

type verifyOutcome struct {
	claim   *models.Claim
	finder  string
	awarded bool
}

// Verify approves or rejects a pending claim.
//
// Approval marks the claim approved, the item returned to the claimant and
// awards HelperPoints plus the Helper badge to the item's creator, all in one
// transaction. A creator without an account is skipped. Rejection only
// touches the claim. Claims that are no longer pending are refused with
// STATE_CONFLICT, so an item pays out at most once.
func (s *VerificationService) Verify(ctx context.Context, actor models.Actor, claimID string, in VerifyInput) (*models.ClaimDetail, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	in.Action = strings.ToLower(strings.TrimSpace(in.Action))
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"claim_id": claimID, "admin_id": actor.UserID, "action": in.Action})

	var outcome verifyOutcome
	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		outcome, err = s.decide(ctx, tx, actor, claimID, in)
		return err
	})
	if err != nil {
		s.metrics.ObserveVerification(in.Action, string(apperror.CodeOf(err)))
		if apperror.CodeOf(err) == apperror.CodeInternal {
			s.logg.Error(ctx, "claim verification failed", err)
		}
		return nil, err
	}
	s.metrics.ObserveVerification(in.Action, "ok")

	eventType := EventClaimRejected
	if in.Action == ActionApprove {
		eventType = EventClaimApproved
	}
	evt := Event{Type: eventType, ActorID: actor.UserID, ClaimID: outcome.claim.ID, ItemID: outcome.claim.ItemID}
	if outcome.awarded {
		s.metrics.AddPointsAwarded(HelperPoints)
		evt.UserID = outcome.finder
		evt.Points = HelperPoints
		if s.leaderboard != nil {
			if err := s.leaderboard.Invalidate(ctx); err != nil {
				s.logg.Warn(ctx, "invalidate leaderboard cache", err)
			}
		}
	}
	s.logg.Info(ctx, "claim verified")
	s.events.emit(ctx, evt)

	details, err := claimDetails(ctx, s.store.Items(), s.store.Users(), []models.Claim{*outcome.claim})
	if err != nil {
		s.logg.Warn(ctx, "load verified claim details", err)
		return &models.ClaimDetail{Claim: *outcome.claim}, nil
	}
	return &details[0], nil
}

func (s *VerificationService) decide(ctx context.Context, tx repositories.Store, actor models.Actor, claimID string, in VerifyInput) (verifyOutcome, error) {
	var out verifyOutcome

	claim, err := tx.Claims().GetByID(ctx, claimID)
	if err != nil {
		return out, notFoundOr(err, "Claim not found", "failed to load claim")
	}
	if claim.Status != models.ClaimStatusPending {
		return out, apperror.StateConflict("Claim has already been " + string(claim.Status))
	}

	now := s.now().UTC()
	decision := repositories.ClaimDecision{VerifiedBy: actor.UserID, VerifiedAt: now}
	var item *models.Item
	if in.Action == ActionApprove {
		item, err = tx.Items().GetByID(ctx, claim.ItemID)
		if err != nil {
			return out, notFoundOr(err, "Item for this claim no longer exists", "failed to load item")
		}
		decision.Status = models.ClaimStatusApproved
	} else {
		decision.Status = models.ClaimStatusRejected
		decision.RejectionReason = in.Reason
	}

	if err := tx.Claims().Decide(ctx, claim.ID, decision); err != nil {
		if errors.Is(err, repositories.ErrStateChanged) {
			return out, apperror.StateConflict("Claim has already been decided")
		}
		return out, apperror.Internal(err, "failed to save claim decision")
	}
	claim.Status = decision.Status
	claim.RejectionReason = decision.RejectionReason
	claim.VerifiedBy = &decision.VerifiedBy
	claim.VerifiedAt = &now
	out.claim = claim

	if item == nil {
		return out, nil
	}

	if err := tx.Items().MarkReturned(ctx, item.ID, claim.ClaimantID); err != nil {
		if errors.Is(err, repositories.ErrStateChanged) {
			return out, apperror.StateConflict("Item has already been returned")
		}
		return out, apperror.Internal(err, "failed to mark item returned")
	}

	if item.CreatedBy == "" {
		return out, nil
	}
	if _, err := tx.Users().AwardPoints(ctx, item.CreatedBy, HelperPoints, models.HelperBadge); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "finder_id", item.CreatedBy), "finder has no account, skipping award", nil)
			return out, nil
		}
		return out, apperror.Internal(err, "failed to award points")
	}
	out.finder = item.CreatedBy
	out.awarded = true
	return out, nil
}
