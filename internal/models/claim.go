package models

import "time"

// ClaimStatus is pending until an admin decides it; both decisions are final.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// Claim is a user's assertion of ownership over one item.
type Claim struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ClaimantID      string      `json:"claimantId" gorm:"type:varchar(36);not null;index"`
	ItemID          string      `json:"itemId" gorm:"type:varchar(36);not null;index"`
	Identifiers     string      `json:"identifiers" gorm:"type:varchar(500);not null"`
	Status          ClaimStatus `json:"status" gorm:"type:varchar(10);not null;default:pending;index"`
	Notes           string      `json:"notes,omitempty" gorm:"type:varchar(500)"`
	RejectionReason string      `json:"rejectionReason,omitempty" gorm:"type:varchar(500)"`
	VerifiedBy      *string     `json:"verifiedBy,omitempty" gorm:"type:varchar(36)"`
	VerifiedAt      *time.Time  `json:"verifiedAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// ClaimDetail is a claim with its item and claimant summaries attached.
type ClaimDetail struct {
	Claim
	Item     *ItemSummary `json:"item,omitempty"`
	Claimant *UserSummary `json:"claimant,omitempty"`
}
