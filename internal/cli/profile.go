package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/mentor-ia/mentor/internal/app/progress"
	"github.com/mentor-ia/mentor/internal/domain"
)

func init() {
	streakCmd.Flags().StringVar(&streakDate, "date", "", "Study date as YYYY-MM-DD (default today)")
	personalityCmd.Flags().IntVar(&personalityLevel, "level", 0, "Show the tier for this level instead of yours")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm wiping all progress and library data")

	rootCmd.AddCommand(profileCmd, recordCmd, streakCmd, badgesCmd, personalityCmd, resetCmd)
}

var (
	streakDate       string
	personalityLevel int
	resetYes         bool
)

// --- profile ---

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"me"},
	Short:   "Show level, experience and streak",
	RunE:    runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	p := d.Progress.GetUserProfile(ctx)
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, p)
	}

	tier := progress.PersonalityFor(p.Level)
	fmt.Fprintf(out, "%s %s  Level %d\n", tier.Emoji, tier.Name, p.Level)
	fmt.Fprintf(out, "  %s\n", renderXPBar(p.Experience))
	fmt.Fprintf(out, "Experience:   %d XP (%d to next level)\n", p.Experience, progress.XPToNextLevel(p.Experience))
	fmt.Fprintf(out, "Streak:       %d days (best %d)\n", p.Streak, p.LongestStreak)
	if p.LastStudyDate != nil {
		fmt.Fprintf(out, "Last studied: %s\n", p.LastStudyDate)
	}
	fmt.Fprintf(out, "Badges:       %d / %d\n", len(p.UnlockedBadgeIDs), len(progress.Catalogue()))
	fmt.Fprintf(out, "\n%s\n", d.Progress.MotivationalMessage(ctx))
	return nil
}

// --- record ---

var recordCmd = &cobra.Command{
	Use:       "record KIND",
	Short:     "Record a study action and earn its experience",
	Long:      "Record a study action. KIND is one of: explanation, quiz_complete, quiz_perfect, voice_input, share, favorite.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: actionKindNames(),
	RunE:      runRecord,
}

func actionKindNames() []string {
	kinds := domain.ActionKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

func runRecord(cmd *cobra.Command, args []string) error {
	kind, err := domain.ParseActionKind(args[0])
	if err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	res, err := d.Progress.RecordAction(ctx, kind)
	if err != nil {
		return err
	}
	streak, err := d.Progress.Touch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"action": res, "streak": streak})
	}

	fmt.Fprintf(out, "+%d XP for %s (total %d XP)\n", res.ExperienceGained, res.Action, res.TotalExperience)
	printRewards(out, res.NewBadges, res.LeveledUp, res.Level)
	printStreak(out, streak)
	return nil
}

// --- streak ---

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Register a study day and show the streak",
	RunE:  runStreak,
}

func runStreak(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	var res domain.StreakResult
	if streakDate == "" {
		res, err = d.Progress.Touch(ctx)
	} else {
		day, perr := civil.ParseDate(streakDate)
		if perr != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidDate, perr)
		}
		res, err = d.Progress.UpdateStreak(ctx, day)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	printStreak(out, res)
	return nil
}

// --- badges ---

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List every badge and whether it is unlocked",
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	badges := d.Progress.Badges(cmd.Context())
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, badges)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tBADGE\tNAME\tXP\tDESCRIPTION")
	for _, b := range badges {
		mark := "  "
		if b.Unlocked {
			mark = b.Icon
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", mark, b.ID, b.Name, b.RewardXP, b.Description)
	}
	return w.Flush()
}

// --- personality ---

var personalityCmd = &cobra.Command{
	Use:   "personality",
	Short: "Show your mentor's personality tier",
	RunE:  runPersonality,
}

func runPersonality(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	level := personalityLevel
	if level <= 0 {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()
		level = d.Progress.GetUserProfile(cmd.Context()).Level
	}

	tier := progress.PersonalityFor(level)
	if jsonOutput {
		return printJSON(out, tier)
	}
	fmt.Fprintf(out, "%s %s (from level %d)\n", tier.Emoji, tier.Name, tier.MinLevel)
	for _, m := range tier.Messages {
		fmt.Fprintf(out, "  - %s\n", m)
	}
	return nil
}

// --- reset ---

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress and library data",
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return errors.New("refusing to reset without --yes")
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.ResetAll(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Progress reset. Back to level 1.")
	return nil
}

// ─── Shared output ──────────────────────────────────────────────────────────

func printRewards(out io.Writer, badges []domain.BadgeDef, leveledUp bool, level int) {
	for _, b := range badges {
		fmt.Fprintf(out, "%s Badge unlocked: %s (+%d XP)\n", b.Icon, b.Name, b.RewardXP)
	}
	if leveledUp {
		fmt.Fprintf(out, "Level up! You are now level %d.\n", level)
	}
}

func printStreak(out io.Writer, res domain.StreakResult) {
	if !res.Advanced {
		fmt.Fprintf(out, "Streak: %d days (already counted today)\n", res.Streak)
		return
	}
	fmt.Fprintf(out, "Streak: %d days\n", res.Streak)
	if res.BonusXP > 0 {
		fmt.Fprintf(out, "Weekly streak bonus: +%d XP\n", res.BonusXP)
	}
	printRewards(out, res.NewBadges, res.LeveledUp, res.Level)
}
