// Package domain holds the pure types shared by the progress engine, the
// study library and the outer surfaces (CLI, HTTP). No infrastructure imports.
package domain

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// ─── Actions ────────────────────────────────────────────────────────────────

// ActionKind is a study action a UI collaborator can record.
type ActionKind string

const (
	ActionExplanation  ActionKind = "explanation"
	ActionQuizComplete ActionKind = "quiz_complete"
	ActionQuizPerfect  ActionKind = "quiz_perfect"
	ActionVoiceInput   ActionKind = "voice_input"
	ActionShare        ActionKind = "share"
	ActionFavorite     ActionKind = "favorite"
)

// ActionKinds lists every recordable action in a stable order.
func ActionKinds() []ActionKind {
	return []ActionKind{
		ActionExplanation,
		ActionQuizComplete,
		ActionQuizPerfect,
		ActionVoiceInput,
		ActionShare,
		ActionFavorite,
	}
}

// ParseActionKind validates a raw action name.
func ParseActionKind(s string) (ActionKind, error) {
	for _, k := range ActionKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// ─── Profile ────────────────────────────────────────────────────────────────

// UserProfile is the single evolving progress record of one installation.
// Level is stored for display only; it is always derivable from Experience.
type UserProfile struct {
	Experience       int64       `json:"xp"`
	Level            int         `json:"level"`
	UnlockedBadgeIDs []string    `json:"badges"`
	Streak           int         `json:"streak"`
	LongestStreak    int         `json:"longestStreak"`
	LastStudyDate    *civil.Date `json:"lastStudyDate"`

	TotalExplanations int `json:"totalExplanations"`
	TotalQuizzes      int `json:"totalQuizzes"`
	PerfectScores     int `json:"perfectScores"`
	VoiceCommands     int `json:"voiceCommands"`
	Shares            int `json:"shares"`
	Favorites         int `json:"favorites"`
}

// HasBadge reports whether the badge id is already unlocked.
func (p UserProfile) HasBadge(id string) bool {
	for _, b := range p.UnlockedBadgeIDs {
		if b == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate without aliasing the
// badge slice or the date pointer.
func (p UserProfile) Clone() UserProfile {
	out := p
	if p.UnlockedBadgeIDs != nil {
		out.UnlockedBadgeIDs = append(make([]string, 0, len(p.UnlockedBadgeIDs)), p.UnlockedBadgeIDs...)
	}
	if p.LastStudyDate != nil {
		d := *p.LastStudyDate
		out.LastStudyDate = &d
	}
	return out
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgeDef defines one achievement in the static catalogue.
// A nil Predicate marks a display-only badge the evaluator never awards.
type BadgeDef struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Icon        string                 `json:"icon"`
	Description string                 `json:"description"`
	RewardXP    int64                  `json:"xp"`
	Predicate   func(UserProfile) bool `json:"-"`
}

// ─── Personality ────────────────────────────────────────────────────────────

// PersonalityTier is the cosmetic mentor persona shown for a level range.
type PersonalityTier struct {
	ID       string   `json:"id"`
	MinLevel int      `json:"level"`
	Name     string   `json:"name"`
	Emoji    string   `json:"emoji"`
	Messages []string `json:"messages"`
}

// ─── Results ────────────────────────────────────────────────────────────────

// ActionResult is returned to the UI after a recorded action.
type ActionResult struct {
	Action           ActionKind `json:"action"`
	ExperienceGained int64      `json:"xp"`
	TotalExperience  int64      `json:"totalXP"`
	Level            int        `json:"level"`
	LeveledUp        bool       `json:"leveledUp"`
	NextLevelXP      int64      `json:"nextLevelXP"`
	NewBadges        []BadgeDef `json:"newBadges"`
}

// StreakResult is returned after the daily streak check.
type StreakResult struct {
	Streak    int        `json:"streak"`
	Advanced  bool       `json:"advanced"`
	BonusXP   int64      `json:"bonusXP"`
	Level     int        `json:"level"`
	LeveledUp bool       `json:"leveledUp"`
	NewBadges []BadgeDef `json:"newBadges"`
}
