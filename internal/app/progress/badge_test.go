package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentor-ia/mentor/internal/app/progress"
)

func badgeIDs(defs []progress.BadgeStatus) []string {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}

func TestCatalogue_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range progress.Catalogue() {
		require.False(t, seen[b.ID], "duplicate badge id %q", b.ID)
		seen[b.ID] = true
		assert.NotEmpty(t, b.Name)
		assert.NotEmpty(t, b.Icon)
		assert.GreaterOrEqual(t, b.RewardXP, int64(0))
	}
	assert.Len(t, seen, 13)
}

func TestBadgeByID(t *testing.T) {
	b, ok := progress.BadgeByID("collector")
	require.True(t, ok)
	assert.Equal(t, int64(25), b.RewardXP)

	_, ok = progress.BadgeByID("nope")
	assert.False(t, ok)
}

func TestEvaluate_FirstSteps(t *testing.T) {
	p := progress.DefaultProfile()
	p.TotalExplanations = 1

	out, unlocked, leveledUp := progress.Evaluate(p)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "first_steps", unlocked[0].ID)
	assert.Equal(t, []string{"first_steps"}, out.UnlockedBadgeIDs)
	assert.Equal(t, int64(0), out.Experience, "first_steps rewards nothing")
	assert.False(t, leveledUp)
}

func TestEvaluate_Idempotent(t *testing.T) {
	p := progress.DefaultProfile()
	p.TotalExplanations = 12

	once, unlocked, _ := progress.Evaluate(p)
	require.Len(t, unlocked, 2)

	twice, again, leveledUp := progress.Evaluate(once)
	assert.Empty(t, again)
	assert.False(t, leveledUp)
	assert.Equal(t, once, twice)
}

func TestEvaluate_MultipleInCatalogueOrder(t *testing.T) {
	p := progress.DefaultProfile()
	p.Favorites = 30
	p.TotalExplanations = 50
	p.Streak = 7
	p.PerfectScores = 1

	out, unlocked, _ := progress.Evaluate(p)

	var ids []string
	var reward int64
	for _, b := range unlocked {
		ids = append(ids, b.ID)
		reward += b.RewardXP
	}
	assert.Equal(t, []string{
		"first_steps", "curious", "scholar", "perfect_score", "streak_7", "collector",
	}, ids)
	assert.Equal(t, reward, out.Experience)
	assert.Equal(t, int64(0+10+50+4+7+25), out.Experience)
}

func TestEvaluate_RewardCanLevelUp(t *testing.T) {
	p := progress.DefaultProfile()
	p.Experience = 95
	p.Level = 1
	p.TotalExplanations = 10
	p.UnlockedBadgeIDs = []string{"first_steps"}

	out, unlocked, leveledUp := progress.Evaluate(p)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "curious", unlocked[0].ID)
	assert.True(t, leveledUp)
	assert.Equal(t, 2, out.Level)
}

func TestEvaluate_DisplayOnlyBadgesNeverUnlock(t *testing.T) {
	p := progress.DefaultProfile()
	p.TotalExplanations = 1000
	p.TotalQuizzes = 1000
	p.PerfectScores = 1000
	p.VoiceCommands = 1000
	p.Shares = 1000
	p.Favorites = 1000
	p.Streak = 1000

	out, _, _ := progress.Evaluate(p)
	for _, id := range []string{"night_owl", "early_bird", "speed_demon"} {
		assert.False(t, out.HasBadge(id), "%s should not unlock", id)
	}
	assert.Len(t, out.UnlockedBadgeIDs, 10)
}

func TestEvaluate_DoesNotAliasInput(t *testing.T) {
	p := progress.DefaultProfile()
	p.TotalExplanations = 1
	p.UnlockedBadgeIDs = make([]string, 0, 8)

	_, _, _ = progress.Evaluate(p)
	assert.Empty(t, p.UnlockedBadgeIDs)
}
