package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lostfound/internal/models"
	"lostfound/internal/repositories"
	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"
	"lostfound/pkg/metrics"
)

// ItemService handles business logic related to item reports.
type ItemService struct {
	items   repositories.ItemRepository
	users   repositories.UserRepository
	events  eventEmitter
	logg    *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewItemService creates a new ItemService. events and m may be nil.
func NewItemService(items repositories.ItemRepository, users repositories.UserRepository, events EventPublisher, logg *logger.Logger, m *metrics.Metrics) *ItemService {
	logg = orNop(logg)
	return &ItemService{
		items:   items,
		users:   users,
		events:  eventEmitter{publisher: events, logg: logg},
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}
}

// CreateItemInput is the payload for reporting an item.
type CreateItemInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    models.Category `json:"category"`
	Location    string          `json:"location"`
	Date        *time.Time      `json:"date"`
	Image       string          `json:"image"`
	Priority    bool            `json:"priority"`
	Anonymous   bool            `json:"anonymous"`
	Metadata    models.Metadata `json:"metadata"`
}

// UpdateItemInput patches an item. Nil fields are left unchanged.
type UpdateItemInput struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Category    *models.Category   `json:"category"`
	Status      *models.ItemStatus `json:"status"`
	Location    *string            `json:"location"`
	Date        *time.Time         `json:"date"`
	Image       *string            `json:"image"`
	Priority    *bool              `json:"priority"`
	Anonymous   *bool              `json:"anonymous"`
	Metadata    *models.Metadata   `json:"metadata"`
}

func (in UpdateItemInput) touchesOnlyMetadata() bool {
	return in.Title == nil && in.Description == nil && in.Category == nil &&
		in.Status == nil && in.Location == nil && in.Date == nil &&
		in.Image == nil && in.Priority == nil && in.Anonymous == nil
}

// ItemView is an item as shown to a particular viewer.
type ItemView struct {
	models.Item
	Creator *models.UserSummary `json:"creator,omitempty"`
}

// itemRecord is the validated shape of a stored item.
type itemRecord struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=1000"`
	Category    string `json:"category" validate:"required,oneof=Electronics Documents Books Clothes Accessories Other"`
	Location    string `json:"location" validate:"max=200"`
	Image       string `json:"image" validate:"max=500"`
}

func validateItem(item *models.Item) error {
	return validateStruct(itemRecord{
		Title:       item.Title,
		Description: item.Description,
		Category:    string(item.Category),
		Location:    item.Location,
		Image:       item.Image,
	})
}

// Create stores a new report. Every report starts as submitted and waits for
// admin approval.
func (s *ItemService) Create(ctx context.Context, actor models.Actor, in CreateItemInput) (*models.Item, error) {
	item := &models.Item{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Status:      models.ItemStatusSubmitted,
		Location:    strings.TrimSpace(in.Location),
		Image:       strings.TrimSpace(in.Image),
		Priority:    in.Priority,
		Anonymous:   in.Anonymous,
		CreatedBy:   actor.UserID,
		Metadata:    in.Metadata,
	}
	if item.Category == "" {
		item.Category = models.CategoryOther
	}
	if in.Date != nil && !in.Date.IsZero() {
		item.Date = *in.Date
	} else {
		item.Date = s.now()
	}
	if item.Metadata == nil {
		item.Metadata = models.Metadata{}
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperror.Internal(err, "failed to create item")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"item_id": item.ID, "user_id": actor.UserID})
	s.logg.Info(ctx, "item submitted")
	s.metrics.IncItemsSubmitted()
	s.events.emit(ctx, Event{Type: EventItemCreated, ActorID: actor.UserID, ItemID: item.ID})
	return item, nil
}

// Get returns one item. Submitted items are visible to their creator and
// admins only.
func (s *ItemService) Get(ctx context.Context, actor models.Actor, id string) (*ItemView, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Item not found", "failed to load item")
	}
	if item.Status == models.ItemStatusSubmitted && !actor.CanModify(item.CreatedBy) {
		return nil, apperror.NotFound("Item not found")
	}
	views, err := s.views(ctx, actor, []models.Item{*item})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ItemQuery filters the item listing. Empty fields mean "any".
type ItemQuery struct {
	Status   string
	Category string
}

// List returns items newest first with priority items on top. Without a
// status filter only approved and found items are listed; non-admins may
// not filter on any other status.
func (s *ItemService) List(ctx context.Context, actor models.Actor, q ItemQuery) ([]ItemView, error) {
	filter := repositories.ItemFilter{Statuses: models.PublicItemStatuses}
	if q.Status != "" {
		status := models.ItemStatus(q.Status)
		if !status.Valid() {
			return nil, apperror.Validation(fmt.Sprintf("Unknown status %q", q.Status))
		}
		if !status.IsPublic() && !actor.IsAdmin() {
			return nil, apperror.Forbidden("Only approved and found items are listed publicly")
		}
		filter.Statuses = []models.ItemStatus{status}
	}
	if q.Category != "" && !strings.EqualFold(q.Category, "all") {
		c := models.Category(q.Category)
		if !c.Valid() {
			return nil, apperror.Validation(fmt.Sprintf("Unknown category %q", q.Category))
		}
		filter.Category = c
	}
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list items")
	}
	return s.views(ctx, actor, items)
}

// ListMine returns every item the caller reported, in any status.
func (s *ItemService) ListMine(ctx context.Context, actor models.Actor) ([]ItemView, error) {
	items, err := s.items.List(ctx, repositories.ItemFilter{CreatedBy: actor.UserID})
	if err != nil {
		return nil, apperror.Internal(err, "failed to list items")
	}
	return s.views(ctx, actor, items)
}

// ListPending returns items awaiting admin approval.
func (s *ItemService) ListPending(ctx context.Context, actor models.Actor) ([]ItemView, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	items, err := s.items.List(ctx, repositories.ItemFilter{Statuses: []models.ItemStatus{models.ItemStatusSubmitted}})
	if err != nil {
		return nil, apperror.Internal(err, "failed to list pending items")
	}
	return s.views(ctx, actor, items)
}

// Update applies a patch from the item's creator or an admin.
//
// Status changes are admin-only and move forward; returned is only reached
// through claim verification. Returned items accept metadata changes and
// nothing else. The write fails with a state conflict if the stored status
// changed after the item was read.
func (s *ItemService) Update(ctx context.Context, actor models.Actor, id string, in UpdateItemInput) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Item not found", "failed to load item")
	}
	if !actor.CanModify(item.CreatedBy) {
		return nil, apperror.Forbidden("You can only edit your own items")
	}
	if item.Status == models.ItemStatusReturned && !in.touchesOnlyMetadata() {
		return nil, apperror.StateConflict("Returned items can only have their metadata changed")
	}
	current := item.Status

	if in.Status != nil && *in.Status != item.Status {
		next := *in.Status
		switch {
		case !next.Valid():
			return nil, apperror.Validation(fmt.Sprintf("Unknown status %q", next)).
				WithFields(map[string]string{"status": "Field 'status' failed on the 'oneof' tag"})
		case next == models.ItemStatusReturned:
			return nil, apperror.StateConflict("Items are marked returned through claim verification")
		case !actor.IsAdmin():
			return nil, apperror.Forbidden("Only administrators can change item status")
		case !item.Status.CanAdvanceTo(next):
			return nil, apperror.StateConflict(fmt.Sprintf("Cannot move item from %s to %s", item.Status, next))
		}
		if next == models.ItemStatusApproved {
			approver := actor.UserID
			item.ApprovedBy = &approver
		}
		item.Status = next
	}

	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.Location != nil {
		item.Location = strings.TrimSpace(*in.Location)
	}
	if in.Date != nil && !in.Date.IsZero() {
		item.Date = *in.Date
	}
	if in.Image != nil {
		item.Image = strings.TrimSpace(*in.Image)
	}
	if in.Priority != nil {
		item.Priority = *in.Priority
	}
	if in.Anonymous != nil {
		item.Anonymous = *in.Anonymous
	}
	if in.Metadata != nil {
		item.Metadata = *in.Metadata
		if item.Metadata == nil {
			item.Metadata = models.Metadata{}
		}
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, item, current); err != nil {
		if errors.Is(err, repositories.ErrStateChanged) {
			return nil, apperror.StateConflict("Item was changed by another request, reload and retry")
		}
		return nil, notFoundOr(err, "Item not found", "failed to update item")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"item_id": item.ID, "status": item.Status}), "item updated")
	return item, nil
}

// Delete removes an item reported by the caller, or any item for admins.
func (s *ItemService) Delete(ctx context.Context, actor models.Actor, id string) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Item not found", "failed to load item")
	}
	if !actor.CanModify(item.CreatedBy) {
		return apperror.Forbidden("You can only delete your own items")
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Item not found", "failed to delete item")
	}
	s.logg.Info(s.logg.WithField(ctx, "item_id", id), "item deleted")
	return nil
}

// Approve publishes a submitted item.
func (s *ItemService) Approve(ctx context.Context, actor models.Actor, id string) (*models.Item, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	if err := s.items.Approve(ctx, id, actor.UserID); err != nil {
		if !errors.Is(err, repositories.ErrStateChanged) {
			return nil, apperror.Internal(err, "failed to approve item")
		}
		if _, getErr := s.items.GetByID(ctx, id); getErr != nil {
			return nil, notFoundOr(getErr, "Item not found", "failed to load item")
		}
		return nil, apperror.StateConflict("Item is not awaiting approval")
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Item not found", "failed to load item")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"item_id": id, "admin_id": actor.UserID})
	s.logg.Info(ctx, "item approved")
	s.metrics.IncItemsApproved()
	s.events.emit(ctx, Event{Type: EventItemApproved, ActorID: actor.UserID, ItemID: id})
	return item, nil
}

// views attaches creator summaries. Metadata, and the creator of anonymous
// reports, are only shown to the creator and admins.
func (s *ItemService) views(ctx context.Context, actor models.Actor, items []models.Item) ([]ItemView, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.CreatedBy)
	}
	creators, err := usersByID(ctx, s.users, ids)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load item creators")
	}

	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{Item: item}
		owner := actor.CanModify(item.CreatedBy)
		if !owner {
			view.Metadata = models.Metadata{}
		}
		if item.Anonymous && !owner {
			view.CreatedBy = ""
		} else {
			view.Creator = creators[item.CreatedBy].Summary()
		}
		out = append(out, view)
	}
	return out, nil
}
