package progress

import (
	"cloud.google.com/go/civil"

	"github.com/mentor-ia/mentor/internal/domain"
)

// DailyStreakXP is awarded each time the streak reaches a multiple of
// StreakBonusEvery days.
const (
	DailyStreakXP    int64 = 15
	StreakBonusEvery       = 7
)

// AdvanceStreak moves the study streak forward to today.
// Same day: no-op (advanced=false). Yesterday: streak+1.
// Anything else, including no prior study day or a date in the future: reset to 1.
func AdvanceStreak(p domain.UserProfile, today civil.Date) (domain.UserProfile, bool) {
	if p.LastStudyDate != nil && *p.LastStudyDate == today {
		return p, false
	}

	out := p.Clone()
	if out.LastStudyDate != nil && out.LastStudyDate.AddDays(1) == today {
		out.Streak++
	} else {
		out.Streak = 1
	}

	d := today
	out.LastStudyDate = &d
	if out.Streak > out.LongestStreak {
		out.LongestStreak = out.Streak
	}
	return out, true
}

// StreakBonusDue reports whether a streak length earns the weekly bonus.
func StreakBonusDue(streak int) bool {
	return streak > 0 && streak%StreakBonusEvery == 0
}
