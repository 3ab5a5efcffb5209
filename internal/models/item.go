package models

import "time"

// Category classifies an item report.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryDocuments   Category = "Documents"
	CategoryBooks       Category = "Books"
	CategoryClothes     Category = "Clothes"
	CategoryAccessories Category = "Accessories"
	CategoryOther       Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryDocuments, CategoryBooks, CategoryClothes, CategoryAccessories, CategoryOther:
		return true
	}
	return false
}

// ItemStatus is the position of an item in its workflow:
// submitted -> approved -> (lost | found) -> claimed -> returned.
type ItemStatus string

const (
	ItemStatusSubmitted ItemStatus = "submitted"
	ItemStatusApproved  ItemStatus = "approved"
	ItemStatusLost      ItemStatus = "lost"
	ItemStatusFound     ItemStatus = "found"
	ItemStatusClaimed   ItemStatus = "claimed"
	ItemStatusReturned  ItemStatus = "returned"
)

var itemStatusRank = map[ItemStatus]int{
	ItemStatusSubmitted: 0,
	ItemStatusApproved:  1,
	ItemStatusLost:      2,
	ItemStatusFound:     2,
	ItemStatusClaimed:   3,
	ItemStatusReturned:  4,
}

// PublicItemStatuses are the statuses shown in the public listing.
var PublicItemStatuses = []ItemStatus{ItemStatusApproved, ItemStatusFound}

func (s ItemStatus) Valid() bool {
	_, ok := itemStatusRank[s]
	return ok
}

// Rank is the workflow position; lost and found share a rank.
func (s ItemStatus) Rank() int {
	if r, ok := itemStatusRank[s]; ok {
		return r
	}
	return -1
}

// CanAdvanceTo reports whether moving from s to next goes strictly forward.
func (s ItemStatus) CanAdvanceTo(next ItemStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.Rank() > s.Rank()
}

func (s ItemStatus) IsPublic() bool {
	return s == ItemStatusApproved || s == ItemStatusFound
}

// Item is a lost or found report. CreatedBy is the finder for found items.
type Item struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string     `json:"title" gorm:"type:varchar(100);not null"`
	Description string     `json:"description" gorm:"type:varchar(1000);not null"`
	Category    Category   `json:"category" gorm:"type:varchar(20);not null;default:Other;index"`
	Status      ItemStatus `json:"status" gorm:"type:varchar(20);not null;default:submitted;index"`
	Location    string     `json:"location,omitempty" gorm:"type:varchar(200)"`
	Date        time.Time  `json:"date" gorm:"index"`
	Image       string     `json:"image,omitempty" gorm:"type:varchar(500)"`
	Priority    bool       `json:"priority" gorm:"not null;default:false;index"`
	Anonymous   bool       `json:"anonymous" gorm:"not null;default:false"`
	CreatedBy   string     `json:"createdBy" gorm:"type:varchar(36);index"`
	ApprovedBy  *string    `json:"approvedBy,omitempty" gorm:"type:varchar(36)"`
	ClaimedBy   *string    `json:"claimedBy,omitempty" gorm:"type:varchar(36)"`
	Metadata    Metadata   `json:"metadata" gorm:"type:text;serializer:json"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Summary returns the projection attached to claims.
func (i *Item) Summary() *ItemSummary {
	if i == nil {
		return nil
	}
	return &ItemSummary{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Category:    i.Category,
		Status:      i.Status,
		Location:    i.Location,
		Date:        i.Date,
	}
}

// ItemSummary is the subset of an item exposed alongside claims.
type ItemSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    Category   `json:"category"`
	Status      ItemStatus `json:"status"`
	Location    string     `json:"location,omitempty"`
	Date        time.Time  `json:"date"`
}
