package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"lostfound/internal/models"
	"lostfound/internal/repositories"
	"lostfound/pkg/apperror"
	"lostfound/pkg/cache"
	"lostfound/pkg/logger"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100

	leaderboardCacheKey = "lf:leaderboard:top"
)

// LeaderboardCache stores the serialized top of the leaderboard.
type LeaderboardCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank       int           `json:"rank"`
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Department string        `json:"department,omitempty"`
	Year       string        `json:"year,omitempty"`
	Points     int           `json:"points"`
	Badges     models.Badges `json:"badges"`
}

// LeaderboardService ranks non-admin users by points, ties going to the
// older account.
type LeaderboardService struct {
	users repositories.UserRepository
	cache LeaderboardCache
	ttl   time.Duration
	logg  *logger.Logger

	// generation counts invalidations made by this process.
	generation atomic.Uint64
}

// NewLeaderboardService creates a new LeaderboardService. A nil cache or a
// non-positive ttl reads straight from the repository.
func NewLeaderboardService(users repositories.UserRepository, c LeaderboardCache, ttl time.Duration, logg *logger.Logger) *LeaderboardService {
	if ttl <= 0 {
		c = nil
	}
	return &LeaderboardService{users: users, cache: c, ttl: ttl, logg: orNop(logg)}
}

// NormalizeLimit clamps limit to [1, MaxLeaderboardLimit]; zero or negative
// values select DefaultLeaderboardLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		return MaxLeaderboardLimit
	}
	return limit
}

// Top returns the first limit entries of the leaderboard.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	limit = NormalizeLimit(limit)

	if entries, ok := s.cached(ctx); ok {
		return head(entries, limit), nil
	}

	gen := s.generation.Load()
	users, err := s.users.Leaderboard(ctx, MaxLeaderboardLimit)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load leaderboard")
	}
	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		badges := u.Badges
		if badges == nil {
			badges = models.Badges{}
		}
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			ID:         u.ID,
			Name:       u.Name,
			Department: u.Department,
			Year:       u.Year,
			Points:     u.Points,
			Badges:     badges,
		})
	}
	s.store(ctx, gen, entries)
	return head(entries, limit), nil
}

// Invalidate drops the cached leaderboard.
func (s *LeaderboardService) Invalidate(ctx context.Context) error {
	s.generation.Add(1)
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, leaderboardCacheKey)
}

func (s *LeaderboardService) cached(ctx context.Context) ([]LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, leaderboardCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logg.Warn(ctx, "read leaderboard cache", err)
		}
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logg.Warn(ctx, "decode leaderboard cache", err)
		return nil, false
	}
	return entries, true
}

// store caches entries read at generation gen. A ranking read before an
// invalidation in this process is removed again once written. Other
// processes' invalidations are bounded by the ttl.
func (s *LeaderboardService) store(ctx context.Context, gen uint64, entries []LeaderboardEntry) {
	if s.cache == nil {
		return
	}
	body, err := json.Marshal(entries)
	if err != nil {
		s.logg.Warn(ctx, "encode leaderboard cache", err)
		return
	}
	if s.generation.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, leaderboardCacheKey, string(body), s.ttl); err != nil {
		s.logg.Warn(ctx, "write leaderboard cache", err)
		return
	}
	if s.generation.Load() != gen {
		if err := s.cache.Del(ctx, leaderboardCacheKey); err != nil {
			s.logg.Warn(ctx, "drop stale leaderboard cache", err)
		}
	}
}

func head(entries []LeaderboardEntry, n int) []LeaderboardEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
