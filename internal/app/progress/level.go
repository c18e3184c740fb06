package progress

import (
	"fmt"

	"github.com/mentor-ia/mentor/internal/domain"
)

// LevelSize is the flat XP width of every level.
const LevelSize = 100

// ComputeLevel returns the level for a cumulative XP amount.
// Linear curve: floor(xp / LevelSize) + 1. Never below 1.
func ComputeLevel(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(xp/LevelSize) + 1
}

// NextLevelXP returns the cumulative XP at which the level after the given
// one starts. It is the only place the threshold arithmetic lives.
func NextLevelXP(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(level) * LevelSize
}

// XPToNextLevel returns XP remaining until the next level.
func XPToNextLevel(xp int64) int64 {
	remaining := NextLevelXP(ComputeLevel(xp)) - xp
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ProgressPct returns progress toward the next level (0.0–100.0).
func ProgressPct(xp int64) float64 {
	if xp < 0 {
		return 0
	}
	into := xp % LevelSize
	return float64(into) * 100.0 / float64(LevelSize)
}

// ApplyExperience adds amount to the profile and recomputes its level.
// The input profile is not modified. Negative amounts are rejected.
func ApplyExperience(p domain.UserProfile, amount int64) (domain.UserProfile, bool, error) {
	if amount < 0 {
		return p, false, fmt.Errorf("%w: got %d", domain.ErrNegativeExperience, amount)
	}

	out := p.Clone()
	oldLevel := ComputeLevel(out.Experience)
	out.Experience += amount
	out.Level = ComputeLevel(out.Experience)

	return out, out.Level > oldLevel, nil
}
