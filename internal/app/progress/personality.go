package progress

import (
	"math/rand"

	"github.com/mentor-ia/mentor/internal/domain"
)

// personalities is ordered by ascending MinLevel.
var personalities = []domain.PersonalityTier{
	{ID: "rookie", MinLevel: 1, Name: "Apprentice", Emoji: "🌱", Messages: []string{
		"Let's learn together!", "Every question is an opportunity!", "You're doing great!",
	}},
	{ID: "scholar", MinLevel: 10, Name: "Student", Emoji: "📚", Messages: []string{
		"Your progress is amazing!", "Keep exploring!", "Knowledge is power!",
	}},
	{ID: "sage", MinLevel: 25, Name: "Sage", Emoji: "🧙", Messages: []string{
		"You've mastered so many topics!", "Your mind keeps expanding!", "Impressive!",
	}},
	{ID: "master", MinLevel: 50, Name: "Master", Emoji: "👑", Messages: []string{
		"You are extraordinary!", "Few get this far!", "Keep inspiring!",
	}},
	{ID: "legend", MinLevel: 100, Name: "Legend", Emoji: "🏆", Messages: []string{
		"You're a living legend!", "Your knowledge is vast!", "Congratulations, champion!",
	}},
}

// Personalities returns all tiers, lowest first.
func Personalities() []domain.PersonalityTier {
	out := make([]domain.PersonalityTier, len(personalities))
	copy(out, personalities)
	return out
}

// PersonalityFor returns the tier with the highest MinLevel ≤ level.
// Total: anything below the first threshold maps to the first tier.
func PersonalityFor(level int) domain.PersonalityTier {
	tier := personalities[0]
	for _, p := range personalities[1:] {
		if level < p.MinLevel {
			break
		}
		tier = p
	}
	return tier
}

// MotivationalMessage picks one of the tier's messages using rng.
// A nil rng always picks the first message.
func MotivationalMessage(level int, rng *rand.Rand) string {
	tier := PersonalityFor(level)
	idx := 0
	if rng != nil {
		idx = rng.Intn(len(tier.Messages))
	}
	return tier.Emoji + " " + tier.Messages[idx]
}
