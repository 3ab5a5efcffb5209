package models

import "time"

// Role is the authorization role of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// HelperBadge is granted to a finder the first time one of their found
// items is returned to its owner.
const HelperBadge = "Helper"

// User is a registered account. Points and badges only change through claim
// verification.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string    `json:"name" gorm:"type:varchar(100);not null"`
	Email      string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password   string    `json:"-" gorm:"type:varchar(255);not null"`
	Phone      string    `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Department string    `json:"department,omitempty" gorm:"type:varchar(100)"`
	Year       string    `json:"year,omitempty" gorm:"type:varchar(20)"`
	Role       Role      `json:"role" gorm:"type:varchar(10);not null;default:user"`
	Points     int       `json:"points" gorm:"not null;default:0;index"`
	Badges     Badges    `json:"badges" gorm:"type:text;serializer:json"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsAdmin is the single authorization capability check for accounts.
func IsAdmin(u *User) bool {
	return u != nil && u.Role == RoleAdmin
}

// Summary returns the public projection attached to items and claims.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
		Year:       u.Year,
	}
}

// UserSummary is the subset of a user exposed alongside other records.
type UserSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Year       string `json:"year,omitempty"`
}

// Badges is an insertion-ordered set of badge labels.
type Badges []string

// Has reports whether label is present.
func (b Badges) Has(label string) bool {
	for _, existing := range b {
		if existing == label {
			return true
		}
	}
	return false
}

// Add appends label unless already present and reports whether it was added.
func (b *Badges) Add(label string) bool {
	if label == "" || b.Has(label) {
		return false
	}
	*b = append(*b, label)
	return true
}

// Actor is the authenticated subject of a request.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanModify reports whether the actor may edit or delete a record owned by
// ownerID.
func (a Actor) CanModify(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}
