package library_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentor-ia/mentor/internal/app/library"
	"github.com/mentor-ia/mentor/internal/domain"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLibrary(t *testing.T, opts ...library.Option) (*library.Library, *memKV, *clock) {
	t.Helper()
	kv := newMemKV()
	c := &clock{t: time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)}
	opts = append([]library.Option{library.WithClock(c.now)}, opts...)
	return library.New(kv, opts...), kv, c
}

// ─── History ────────────────────────────────────────────────────────────────

func TestSaveExplanation_NewestFirst(t *testing.T) {
	ctx := context.Background()
	lib, _, c := newTestLibrary(t)

	first, err := lib.SaveExplanation(ctx, "photosynthesis", "plants eat light")
	require.NoError(t, err)
	c.t = c.t.Add(time.Minute)
	second, err := lib.SaveExplanation(ctx, "gravity", "things fall")
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	history := lib.History(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, "gravity", history[0].Topic)
	assert.Equal(t, "photosynthesis", history[1].Topic)
}

func TestSaveExplanation_CappedAtMax(t *testing.T) {
	ctx := context.Background()
	lib, _, _ := newTestLibrary(t)

	for i := 0; i < library.MaxHistory+5; i++ {
		_, err := lib.SaveExplanation(ctx, fmt.Sprintf("topic-%d", i), "")
		require.NoError(t, err)
	}

	history := lib.History(ctx)
	require.Len(t, history, library.MaxHistory)
	assert.Equal(t, fmt.Sprintf("topic-%d", library.MaxHistory+4), history[0].Topic)
}

func TestSaveExplanation_EmptyTopic(t *testing.T) {
	lib, kv, _ := newTestLibrary(t)

	_, err := lib.SaveExplanation(context.Background(), "   ", "content")
	assert.ErrorIs(t, err, domain.ErrEmptyTopic)
	assert.Empty(t, kv.data)
}

func TestSaveExplanation_WriteFailure(t *testing.T) {
	lib, kv, _ := newTestLibrary(t)
	kv.setFailures(false, true, false)

	_, err := lib.SaveExplanation(context.Background(), "gravity", "")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestSaveExplanation_ReadFailureKeepsHistory(t *testing.T) {
	ctx := context.Background()
	lib, kv, _ := newTestLibrary(t)

	for _, topic := range []string{"atoms", "cells", "stars"} {
		_, err := lib.SaveExplanation(ctx, topic, "")
		require.NoError(t, err)
	}
	before := kv.data[library.HistoryKey]

	kv.setFailures(true, false, false)
	_, err := lib.SaveExplanation(ctx, "gravity", "")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, before, kv.data[library.HistoryKey])

	kv.setFailures(false, false, false)
	assert.Len(t, lib.History(ctx), 3)
	assert.Equal(t, 3, lib.Stats(ctx).TotalExplanations)
}

func TestHistory_ReadFailureIsEmpty(t *testing.T) {
	lib, kv, _ := newTestLibrary(t)
	kv.data[library.HistoryKey] = `[{"id":"a","topic":"x"}]`
	kv.setFailures(true, false, false)

	assert.Empty(t, lib.History(context.Background()))
}

func TestHistory_MalformedIsEmpty(t *testing.T) {
	lib, kv, _ := newTestLibrary(t)
	kv.data[library.HistoryKey] = `{not json`

	history := lib.History(context.Background())
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	lib, _, _ := newTestLibrary(t)

	_, err := lib.SaveExplanation(ctx, "gravity", "")
	require.NoError(t, err)
	require.NoError(t, lib.ClearHistory(ctx))
	assert.Empty(t, lib.History(ctx))
}

func TestFindHistory(t *testing.T) {
	ctx := context.Background()
	lib, _, _ := newTestLibrary(t)

	item, err := lib.SaveExplanation(ctx, "gravity", "things fall")
	require.NoError(t, err)

	got, ok := lib.FindHistory(ctx, item.ID)
	require.True(t, ok)
	assert.Equal(t, "things fall", got.Content)

	_, ok = lib.FindHistory(ctx, "missing")
	assert.False(t, ok)
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestStats_TrackTopicsAndDays(t *testing.T) {
	ctx := context.Background()
	lib, _, c := newTestLibrary(t)

	for _, topic := range []string{"gravity", "gravity", "atoms"} {
		_, err := lib.SaveExplanation(ctx, topic, "")
		require.NoError(t, err)
	}
	c.t = c.t.Add(24 * time.Hour)
	_, err := lib.SaveExplanation(ctx, "atoms", "")
	require.NoError(t, err)

	stats := lib.Stats(ctx)
	assert.Equal(t, 4, stats.TotalExplanations)
	assert.Equal(t, map[string]int{"gravity": 2, "atoms": 2}, stats.Topics)
	assert.Equal(t, []string{"2024-03-10", "2024-03-11"}, stats.DaysUsed)
	require.NotNil(t, stats.LastAccess)
	assert.True(t, stats.LastAccess.Equal(c.t))
}

func TestStats_EmptyDefaults(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	stats := lib.Stats(context.Background())
	assert.Zero(t, stats.TotalExplanations)
	assert.NotNil(t, stats.Topics)
	assert.NotNil(t, stats.DaysUsed)
	assert.Nil(t, stats.LastAccess)
}

// ─── Favorites ──────────────────────────────────────────────────────────────

func TestFavorites_AddDedupeRemove(t *testing.T) {
	ctx := context.Background()
	lib, _, _ := newTestLibrary(t)

	item, err := lib.SaveExplanation(ctx, "gravity", "things fall")
	require.NoError(t, err)

	added, err := lib.AddFavorite(ctx, item)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = lib.AddFavorite(ctx, item)
	require.NoError(t, err)
	assert.False(t, added)

	require.Len(t, lib.Favorites(ctx), 1)
	assert.True(t, lib.IsFavorite(ctx, item.ID))

	require.NoError(t, lib.RemoveFavorite(ctx, item.ID))
	assert.False(t, lib.IsFavorite(ctx, item.ID))
	assert.Empty(t, lib.Favorites(ctx))
}

func TestRemoveFavorite_NotFound(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	err := lib.RemoveFavorite(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrFavoriteNotFound))
}

func TestFavorites_ReadFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	lib, kv, _ := newTestLibrary(t)

	for _, id := range []string{"a", "b"} {
		_, err := lib.AddFavorite(ctx, domain.HistoryItem{ID: id, Topic: id})
		require.NoError(t, err)
	}
	before := kv.data[library.FavoritesKey]

	kv.setFailures(true, false, false)
	added, err := lib.AddFavorite(ctx, domain.HistoryItem{ID: "c", Topic: "c"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.False(t, added)
	assert.ErrorIs(t, lib.RemoveFavorite(ctx, "a"), domain.ErrStoreUnavailable)
	assert.Equal(t, before, kv.data[library.FavoritesKey])

	kv.setFailures(false, false, false)
	assert.Len(t, lib.Favorites(ctx), 2)
}

func TestFavorites_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	lib, _, c := newTestLibrary(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := lib.AddFavorite(ctx, domain.HistoryItem{ID: id, Topic: id})
		require.NoError(t, err)
		c.t = c.t.Add(time.Second)
	}

	favs := lib.Favorites(ctx)
	require.Len(t, favs, 3)
	assert.Equal(t, "c", favs[0].ID)
	assert.Equal(t, "a", favs[2].ID)
}

// ─── Reset ──────────────────────────────────────────────────────────────────

func TestReset_RemovesEveryKey(t *testing.T) {
	ctx := context.Background()
	lib, kv, _ := newTestLibrary(t)

	item, err := lib.SaveExplanation(ctx, "gravity", "")
	require.NoError(t, err)
	_, err = lib.AddFavorite(ctx, item)
	require.NoError(t, err)
	_, err = lib.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, lib.SetPremium(ctx, true))
	kv.data["user_profile"] = "{}"

	require.NoError(t, lib.Reset(ctx))
	assert.Equal(t, map[string]string{"user_profile": "{}"}, kv.data)
}

func TestReset_RemoveFailure(t *testing.T) {
	lib, kv, _ := newTestLibrary(t)
	kv.setFailures(false, false, true)

	assert.ErrorIs(t, lib.Reset(context.Background()), domain.ErrStoreUnavailable)
}
