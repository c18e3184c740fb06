package progress

import (
	"github.com/mentor-ia/mentor/internal/domain"
)

// Catalogue returns every badge in declaration order. Evaluation and
// display both follow this order.
func Catalogue() []domain.BadgeDef {
	return []domain.BadgeDef{
		// ── Explanations ───────────────────────────────────────────────
		{
			ID: "first_steps", Name: "First Steps", Icon: "👣",
			Description: "Complete your first explanation", RewardXP: 0,
			Predicate: func(p domain.UserProfile) bool { return p.TotalExplanations >= 1 },
		},
		{
			ID: "curious", Name: "Curious", Icon: "🔍",
			Description: "Read 10 explanations", RewardXP: 10,
			Predicate: func(p domain.UserProfile) bool { return p.TotalExplanations >= 10 },
		},
		{
			ID: "scholar", Name: "Scholar", Icon: "📚",
			Description: "Read 50 explanations", RewardXP: 50,
			Predicate: func(p domain.UserProfile) bool { return p.TotalExplanations >= 50 },
		},

		// ── Quizzes ────────────────────────────────────────────────────
		{
			ID: "quiz_master", Name: "Quiz Master", Icon: "🎯",
			Description: "Complete 20 quizzes", RewardXP: 20,
			Predicate: func(p domain.UserProfile) bool { return p.TotalQuizzes >= 20 },
		},
		{
			ID: "perfect_score", Name: "Perfect Score", Icon: "💯",
			Description: "Get 100% on a quiz", RewardXP: 4,
			Predicate: func(p domain.UserProfile) bool { return p.PerfectScores >= 1 },
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_7", Name: "Consistent", Icon: "🔥",
			Description: "Study 7 days in a row", RewardXP: 7,
			Predicate: func(p domain.UserProfile) bool { return p.Streak >= 7 },
		},
		{
			ID: "streak_30", Name: "Dedicated", Icon: "⭐",
			Description: "Study 30 days in a row", RewardXP: 30,
			Predicate: func(p domain.UserProfile) bool { return p.Streak >= 30 },
		},

		// ── Social & input ─────────────────────────────────────────────
		{
			ID: "voice_pioneer", Name: "Active Voice", Icon: "🎤",
			Description: "Use voice input 10 times", RewardXP: 10,
			Predicate: func(p domain.UserProfile) bool { return p.VoiceCommands >= 10 },
		},
		{
			ID: "social_butterfly", Name: "Social Butterfly", Icon: "🦋",
			Description: "Share 5 explanations", RewardXP: 5,
			Predicate: func(p domain.UserProfile) bool { return p.Shares >= 5 },
		},

		// ── Display only: no counter backs these yet ───────────────────
		{
			ID: "night_owl", Name: "Night Owl", Icon: "🦉",
			Description: "Study after midnight", RewardXP: 1,
		},
		{
			ID: "early_bird", Name: "Early Bird", Icon: "🐦",
			Description: "Study before 6am", RewardXP: 1,
		},
		{
			ID: "speed_demon", Name: "Lightning", Icon: "⚡",
			Description: "Finish 5 topics within an hour", RewardXP: 5,
		},

		// ── Collection ─────────────────────────────────────────────────
		{
			ID: "collector", Name: "Collector", Icon: "💎",
			Description: "Keep 25 favorites", RewardXP: 25,
			Predicate: func(p domain.UserProfile) bool { return p.Favorites >= 25 },
		},
	}
}

// BadgeByID looks up a catalogue entry.
func BadgeByID(id string) (domain.BadgeDef, bool) {
	for _, b := range Catalogue() {
		if b.ID == id {
			return b, true
		}
	}
	return domain.BadgeDef{}, false
}

// Evaluate awards every badge whose predicate now holds and that the
// profile does not own yet. Rewards go through ApplyExperience one badge at
// a time, so a badge can itself cause a level-up. Returns the updated
// profile, the new badges in catalogue order and whether any reward
// crossed a level boundary. A second call with no counter change is a no-op.
func Evaluate(p domain.UserProfile) (domain.UserProfile, []domain.BadgeDef, bool) {
	out := p.Clone()
	var (
		unlocked  []domain.BadgeDef
		leveledUp bool
	)

	for _, def := range Catalogue() {
		if def.Predicate == nil || out.HasBadge(def.ID) {
			continue
		}
		if !def.Predicate(out) {
			continue
		}

		out.UnlockedBadgeIDs = append(out.UnlockedBadgeIDs, def.ID)
		// Catalogue rewards are never negative, so the error path is unreachable.
		next, up, err := ApplyExperience(out, def.RewardXP)
		if err == nil {
			out = next
			leveledUp = leveledUp || up
		}
		unlocked = append(unlocked, def)
	}

	return out, unlocked, leveledUp
}
