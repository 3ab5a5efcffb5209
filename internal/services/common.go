package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"lostfound/internal/models"
	"lostfound/internal/repositories"
	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct turns validator failures into a VALIDATION_ERROR carrying
// one message per offending field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return apperror.Validation(fmt.Sprintf("Field '%s' failed on the '%s' tag", verrs[0].Field(), verrs[0].Tag())).WithFields(fields)
}

// notFoundOr maps repositories.ErrNotFound to NOT_FOUND and anything else
// to an internal error.
func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	return apperror.Internal(err, internal)
}

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

const (
	EventItemCreated   = "item.created"
	EventItemApproved  = "item.approved"
	EventClaimCreated  = "claim.created"
	EventClaimApproved = "claim.approved"
	EventClaimRejected = "claim.rejected"
)

// Event is the JSON envelope published for every domain event.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	ActorID    string    `json:"actorId,omitempty"`
	ItemID     string    `json:"itemId,omitempty"`
	ClaimID    string    `json:"claimId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	Points     int       `json:"points,omitempty"`
}

type eventEmitter struct {
	publisher EventPublisher
	logg      *logger.Logger
}

// emit publishes evt best effort. A broker failure never fails the request.
func (e eventEmitter) emit(ctx context.Context, evt Event) {
	if e.publisher == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		e.logg.Warn(ctx, "marshal event", err)
		return
	}
	if err := e.publisher.Publish(evt.Type, body); err != nil {
		e.logg.Warn(e.logg.WithField(ctx, "event", evt.Type), "publish event", err)
	}
}

func orNop(l *logger.Logger) *logger.Logger {
	if l == nil {
		return logger.Nop()
	}
	return l
}

// usersByID loads the given user ids, skipping blanks and duplicates.
func usersByID(ctx context.Context, repo repositories.UserRepository, ids []string) (map[string]*models.User, error) {
	return repo.GetByIDs(ctx, uniqueIDs(ids))
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// claimDetails attaches item and claimant summaries to claims. Missing
// records leave the summary nil.
func claimDetails(ctx context.Context, items repositories.ItemRepository, users repositories.UserRepository, claims []models.Claim) ([]models.ClaimDetail, error) {
	itemIDs := make([]string, 0, len(claims))
	userIDs := make([]string, 0, len(claims))
	for _, c := range claims {
		itemIDs = append(itemIDs, c.ItemID)
		userIDs = append(userIDs, c.ClaimantID)
	}
	itemMap, err := items.GetByIDs(ctx, uniqueIDs(itemIDs))
	if err != nil {
		return nil, err
	}
	userMap, err := usersByID(ctx, users, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]models.ClaimDetail, 0, len(claims))
	for _, c := range claims {
		out = append(out, models.ClaimDetail{
			Claim:    c,
			Item:     itemMap[c.ItemID].Summary(),
			Claimant: userMap[c.ClaimantID].Summary(),
		})
	}
	return out, nil
}
