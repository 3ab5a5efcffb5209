package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories so multi-record workflows can run them in
// one transaction.
type Store interface {
	Users() UserRepository
	Items() ItemRepository
	Claims() ClaimRepository
	// WithinTransaction runs fn with a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is the GORM-backed Store.
type GORMStore struct {
	db     *gorm.DB
	users  *GORMUserRepository
	items  *GORMItemRepository
	claims *GORMClaimRepository
}

// NewGORMStore creates a Store over db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db:     db,
		users:  NewGORMUserRepository(db),
		items:  NewGORMItemRepository(db),
		claims: NewGORMClaimRepository(db),
	}
}

func (s *GORMStore) Users() UserRepository   { return s.users }
func (s *GORMStore) Items() ItemRepository   { return s.items }
func (s *GORMStore) Claims() ClaimRepository { return s.claims }

func (s *GORMStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
