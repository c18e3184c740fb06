// Package library keeps the local study library next to the progress
// profile: the explanation history, favorites, usage statistics, the daily
// free-use quota and the premium flag. Each lives under its own key in the
// same KV store the progress engine uses.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mentor-ia/mentor/internal/domain"
	"github.com/mentor-ia/mentor/internal/infra/metrics"
)

// KV keys owned by the library.
const (
	HistoryKey    = "history"
	FavoritesKey  = "favorites"
	StatsKey      = "usage_stats"
	DailyCountKey = "daily_count"
	PremiumKey    = "premium"
)

// MaxHistory is how many explanations the history keeps, newest first.
const MaxHistory = 50

// DefaultDailyLimit is the free explanations allowed per day.
const DefaultDailyLimit = 5

// Library reads and writes the study library.
type Library struct {
	mu         sync.Mutex
	kv         domain.KVStore
	log        *zap.Logger
	now        func() time.Time
	dailyLimit int
}

// Option configures a Library.
type Option func(*Library)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Library) {
		if log != nil {
			l.log = log
		}
	}
}

// WithDailyLimit overrides DefaultDailyLimit. Values < 1 are ignored.
func WithDailyLimit(n int) Option {
	return func(l *Library) {
		if n > 0 {
			l.dailyLimit = n
		}
	}
}

// New creates a library over kv.
func New(kv domain.KVStore, opts ...Option) *Library {
	l := &Library{
		kv:         kv,
		log:        zap.NewNop(),
		now:        time.Now,
		dailyLimit: DefaultDailyLimit,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ─── History ────────────────────────────────────────────────────────────────

// SaveExplanation prepends an explanation to the history (capped at
// MaxHistory) and updates the usage stats.
func (l *Library) SaveExplanation(ctx context.Context, topic, content string) (domain.HistoryItem, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.HistoryItem{}, domain.ErrEmptyTopic
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	item := domain.HistoryItem{
		ID:        uuid.NewString(),
		Topic:     topic,
		Content:   content,
		CreatedAt: now,
	}

	var history []domain.HistoryItem
	if err := l.loadForUpdate(ctx, HistoryKey, &history); err != nil {
		return domain.HistoryItem{}, err
	}
	history = append([]domain.HistoryItem{item}, history...)
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	if err := l.save(ctx, HistoryKey, history); err != nil {
		return domain.HistoryItem{}, err
	}

	stats, err := l.loadStatsForUpdate(ctx)
	if err != nil {
		l.log.Warn("usage stats not updated", zap.Error(err))
		return item, nil
	}
	stats.TotalExplanations++
	stats.Topics[topic]++
	day := now.Format(time.DateOnly)
	if !containsString(stats.DaysUsed, day) {
		stats.DaysUsed = append(stats.DaysUsed, day)
	}
	stats.LastAccess = &now
	if err := l.save(ctx, StatsKey, stats); err != nil {
		// History is already durable; stats are best effort.
		l.log.Warn("usage stats not updated", zap.Error(err))
	}

	return item, nil
}

// History returns saved explanations, newest first.
func (l *Library) History(ctx context.Context) []domain.HistoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	history := []domain.HistoryItem{}
	l.load(ctx, HistoryKey, &history)
	return history
}

// ClearHistory removes every saved explanation.
func (l *Library) ClearHistory(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remove(ctx, HistoryKey)
}

// ─── Favorites ──────────────────────────────────────────────────────────────

// AddFavorite pins a history item. Returns false if it was already pinned.
func (l *Library) AddFavorite(ctx context.Context, item domain.HistoryItem) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	favs := []domain.Favorite{}
	if err := l.loadForUpdate(ctx, FavoritesKey, &favs); err != nil {
		return false, err
	}
	for _, f := range favs {
		if f.ID == item.ID {
			return false, nil
		}
	}

	fav := domain.Favorite{ID: item.ID, Topic: item.Topic, Content: item.Content, AddedAt: l.now()}
	favs = append([]domain.Favorite{fav}, favs...)
	if err := l.save(ctx, FavoritesKey, favs); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveFavorite unpins an item by id.
func (l *Library) RemoveFavorite(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	favs := []domain.Favorite{}
	if err := l.loadForUpdate(ctx, FavoritesKey, &favs); err != nil {
		return err
	}

	kept := favs[:0]
	found := false
	for _, f := range favs {
		if f.ID == id {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return fmt.Errorf("%w: %s", domain.ErrFavoriteNotFound, id)
	}
	return l.save(ctx, FavoritesKey, kept)
}

// Favorites returns pinned items, most recent first.
func (l *Library) Favorites(ctx context.Context) []domain.Favorite {
	l.mu.Lock()
	defer l.mu.Unlock()

	favs := []domain.Favorite{}
	l.load(ctx, FavoritesKey, &favs)
	return favs
}

// IsFavorite reports whether id is pinned.
func (l *Library) IsFavorite(ctx context.Context, id string) bool {
	for _, f := range l.Favorites(ctx) {
		if f.ID == id {
			return true
		}
	}
	return false
}

// FindHistory returns the history item with the given id.
func (l *Library) FindHistory(ctx context.Context, id string) (domain.HistoryItem, bool) {
	for _, h := range l.History(ctx) {
		if h.ID == id {
			return h, true
		}
	}
	return domain.HistoryItem{}, false
}

// ─── Stats ──────────────────────────────────────────────────────────────────

// Stats returns the usage statistics.
func (l *Library) Stats(ctx context.Context) domain.UsageStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadStats(ctx)
}

func (l *Library) loadStats(ctx context.Context) domain.UsageStats {
	var stats domain.UsageStats
	l.load(ctx, StatsKey, &stats)
	return withEmptyStats(stats)
}

func (l *Library) loadStatsForUpdate(ctx context.Context) (domain.UsageStats, error) {
	var stats domain.UsageStats
	if err := l.loadForUpdate(ctx, StatsKey, &stats); err != nil {
		return stats, err
	}
	return withEmptyStats(stats), nil
}

func withEmptyStats(stats domain.UsageStats) domain.UsageStats {
	if stats.Topics == nil {
		stats.Topics = map[string]int{}
	}
	if stats.DaysUsed == nil {
		stats.DaysUsed = []string{}
	}
	return stats
}

// ─── Reset ──────────────────────────────────────────────────────────────────

// Reset removes every library key. It keeps going after a failure and
// returns the first error.
func (l *Library) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var first error
	for _, key := range []string{HistoryKey, FavoritesKey, StatsKey, DailyCountKey, PremiumKey} {
		if err := l.remove(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ─── KV helpers ─────────────────────────────────────────────────────────────

// load decodes key into v for read-only callers. Missing, unreadable or
// malformed values leave v untouched so callers keep their zero value.
func (l *Library) load(ctx context.Context, key string, v any) {
	if err := l.loadForUpdate(ctx, key, v); err != nil {
		l.log.Warn("library read failed, using empty value", zap.String("key", key), zap.Error(err))
	}
}

// loadForUpdate is load for callers that write the value back. Missing or
// malformed values still leave v untouched, but a failed read returns
// ErrStoreUnavailable so the stored value is not replaced.
func (l *Library) loadForUpdate(ctx context.Context, key string, v any) error {
	raw, ok, err := l.kv.Get(ctx, key)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("get").Inc()
		return fmt.Errorf("%w: read %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		metrics.StoreFailures.WithLabelValues("decode").Inc()
		l.log.Warn("library value malformed, using empty value", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (l *Library) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.kv.Set(ctx, key, string(data)); err != nil {
		metrics.StoreFailures.WithLabelValues("set").Inc()
		return fmt.Errorf("%w: save %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	return nil
}

func (l *Library) remove(ctx context.Context, key string) error {
	if err := l.kv.Remove(ctx, key); err != nil {
		metrics.StoreFailures.WithLabelValues("remove").Inc()
		return fmt.Errorf("%w: remove %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
