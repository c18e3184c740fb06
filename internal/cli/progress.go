package cli

import (
	"fmt"
	"strings"

	"github.com/mentor-ia/mentor/internal/app/progress"
)

// ─── Meters ─────────────────────────────────────────────────────────────────
//   [============>.................]  42% | 42 / 100 XP
//   [==========>...................]  2 / 5 today

const barWidth = 30

// meter draws done/total as a fixed-width bar. total <= 0 draws an empty bar.
func meter(done, total int64) string {
	var filled int
	if total > 0 && done > 0 {
		filled = int(min(done, total) * barWidth / total)
	}

	var b strings.Builder
	b.Grow(barWidth + 2)
	b.WriteByte('[')
	switch {
	case filled >= barWidth:
		b.WriteString(strings.Repeat("=", barWidth))
	case filled > 0:
		b.WriteString(strings.Repeat("=", filled-1))
		b.WriteByte('>')
		b.WriteString(strings.Repeat(".", barWidth-filled))
	default:
		b.WriteString(strings.Repeat(".", barWidth))
	}
	b.WriteByte(']')
	return b.String()
}

// renderXPBar shows progress through the current level.
func renderXPBar(xp int64) string {
	into := progress.LevelSize - progress.XPToNextLevel(xp)
	return fmt.Sprintf("%s %3.0f%% | %d / %d XP",
		meter(into, progress.LevelSize), progress.ProgressPct(xp), into, progress.LevelSize)
}

// renderQuotaBar shows today's free explanations used against the limit.
func renderQuotaBar(used, limit int) string {
	return fmt.Sprintf("%s %d / %d today", meter(int64(used), int64(limit)), used, limit)
}
