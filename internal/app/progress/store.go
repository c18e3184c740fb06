package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mentor-ia/mentor/internal/domain"
	"github.com/mentor-ia/mentor/internal/infra/metrics"
)

// ProfileKey is the single KV key the profile record lives under.
const ProfileKey = "user_profile"

// DefaultProfile returns the zero-progress profile created on first use.
func DefaultProfile() domain.UserProfile {
	return domain.UserProfile{
		Level:            1,
		UnlockedBadgeIDs: []string{},
	}
}

// Store reads and writes the whole profile as one JSON value.
type Store struct {
	kv  domain.KVStore
	log *zap.Logger
}

// NewStore creates a profile store over kv.
func NewStore(kv domain.KVStore, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// Load returns the stored profile. It never fails: a missing key, a read
// error or an undecodable value all yield DefaultProfile. A stored level
// that disagrees with the experience counter is recomputed. Use it for
// reads only; LoadForUpdate guards read-modify-write.
func (s *Store) Load(ctx context.Context) domain.UserProfile {
	p, err := s.LoadForUpdate(ctx)
	if err != nil {
		s.log.Warn("profile read failed, using default", zap.Error(err))
		return DefaultProfile()
	}
	return p
}

// LoadForUpdate is Load for callers that will write the result back. A
// missing or malformed value still yields DefaultProfile, but a failed read
// returns ErrStoreUnavailable so the stored record is never overwritten
// from a default.
func (s *Store) LoadForUpdate(ctx context.Context) (domain.UserProfile, error) {
	raw, ok, err := s.kv.Get(ctx, ProfileKey)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("get").Inc()
		return domain.UserProfile{}, fmt.Errorf("%w: read profile: %v", domain.ErrStoreUnavailable, err)
	}
	if !ok {
		return DefaultProfile(), nil
	}

	var p domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		metrics.StoreFailures.WithLabelValues("decode").Inc()
		s.log.Warn("stored profile is malformed, using default", zap.Error(err))
		return DefaultProfile(), nil
	}

	return normalize(p, s.log), nil
}

// Save replaces the stored profile.
func (s *Store) Save(ctx context.Context, p domain.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.kv.Set(ctx, ProfileKey, string(data)); err != nil {
		metrics.StoreFailures.WithLabelValues("set").Inc()
		return fmt.Errorf("%w: save profile: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Clear deletes the stored profile; the next Load returns the default.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, ProfileKey); err != nil {
		metrics.StoreFailures.WithLabelValues("remove").Inc()
		return fmt.Errorf("%w: clear profile: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// normalize repairs values a hand-edited or older record may carry.
func normalize(p domain.UserProfile, log *zap.Logger) domain.UserProfile {
	if p.Experience < 0 {
		p.Experience = 0
	}
	if want := ComputeLevel(p.Experience); p.Level != want {
		log.Warn("stored level diverged from experience, recomputing",
			zap.Int("stored", p.Level), zap.Int("computed", want))
		p.Level = want
	}

	seen := make(map[string]bool, len(p.UnlockedBadgeIDs))
	badges := make([]string, 0, len(p.UnlockedBadgeIDs))
	for _, id := range p.UnlockedBadgeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		badges = append(badges, id)
	}
	p.UnlockedBadgeIDs = badges

	if p.Streak < 0 {
		p.Streak = 0
	}
	if p.LongestStreak < p.Streak {
		p.LongestStreak = p.Streak
	}
	return p
}
