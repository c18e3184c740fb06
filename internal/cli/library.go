package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mentor-ia/mentor/internal/domain"
)

func init() {
	historyCmd.AddCommand(historySaveCmd, historyClearCmd)
	favoritesCmd.AddCommand(favoritesAddCmd, favoritesRmCmd)
	quotaCmd.AddCommand(quotaPremiumCmd)
	rootCmd.AddCommand(historyCmd, favoritesCmd, statsCmd, quotaCmd)
}

// ─── History ────────────────────────────────────────────────────────────────

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved explanations, newest first",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	items := d.Library.History(cmd.Context())
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No saved explanations yet. Run 'mentor history save TOPIC' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOPIC\tSAVED")
	for _, h := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", h.ID, h.Topic, h.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

var historySaveCmd = &cobra.Command{
	Use:   "save TOPIC [CONTENT...]",
	Short: "Save an explanation and earn its experience",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySave,
}

func runHistorySave(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if strings.TrimSpace(args[0]) == "" {
		return domain.ErrEmptyTopic
	}

	ctx := cmd.Context()
	quota, err := d.Library.Consume(ctx)
	if err != nil {
		return err
	}
	item, err := d.Library.SaveExplanation(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		if rerr := d.Library.Refund(ctx); rerr != nil {
			d.Log.Warn("quota not refunded", zap.Error(rerr))
		}
		return err
	}
	res, err := d.Progress.RecordAction(ctx, domain.ActionExplanation)
	if err != nil {
		return err
	}
	streak, err := d.Progress.Touch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"item": item, "action": res, "streak": streak, "quota": quota})
	}
	fmt.Fprintf(out, "Saved %q (%s)\n", item.Topic, item.ID)
	fmt.Fprintf(out, "+%d XP (total %d XP)\n", res.ExperienceGained, res.TotalExperience)
	printRewards(out, res.NewBadges, res.LeveledUp, res.Level)
	printStreak(out, streak)
	printQuota(out, quota)
	return nil
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved explanation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Library.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}

// ─── Favorites ──────────────────────────────────────────────────────────────

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"favs"},
	Short:   "List pinned explanations",
	RunE:    runFavorites,
}

func runFavorites(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	favs := d.Library.Favorites(cmd.Context())
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, favs)
	}
	if len(favs) == 0 {
		fmt.Fprintln(out, "No favorites yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOPIC\tADDED")
	for _, f := range favs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Topic, f.AddedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add ID",
	Short: "Pin a saved explanation",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesAdd,
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	item, ok := d.Library.FindHistory(ctx, args[0])
	if !ok {
		return fmt.Errorf("history item %q not found", args[0])
	}
	added, err := d.Library.AddFavorite(ctx, item)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !added {
		fmt.Fprintf(out, "%q is already a favorite.\n", item.Topic)
		return nil
	}
	res, err := d.Progress.RecordAction(ctx, domain.ActionFavorite)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Pinned %q. +%d XP\n", item.Topic, res.ExperienceGained)
	printRewards(out, res.NewBadges, res.LeveledUp, res.Level)
	return nil
}

var favoritesRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"remove"},
	Short:   "Unpin a favorite",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Library.RemoveFavorite(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Favorite removed.")
		return nil
	},
}

// ─── Stats & quota ──────────────────────────────────────────────────────────

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		stats := d.Library.Stats(cmd.Context())
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, stats)
		}
		fmt.Fprintf(out, "Explanations: %d\n", stats.TotalExplanations)
		fmt.Fprintf(out, "Topics:       %d\n", len(stats.Topics))
		fmt.Fprintf(out, "Days used:    %d\n", len(stats.DaysUsed))
		if stats.LastAccess != nil {
			fmt.Fprintf(out, "Last access:  %s\n", stats.LastAccess.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show today's free explanation allowance",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		q := d.Library.Quota(cmd.Context())
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), q)
		}
		printQuota(cmd.OutOrStdout(), q)
		return nil
	},
}

var quotaPremiumCmd = &cobra.Command{
	Use:       "premium on|off",
	Short:     "Toggle unlimited explanations",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch args[0] {
		case "on":
			on = true
		case "off":
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}

		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Library.SetPremium(cmd.Context(), on); err != nil {
			return err
		}
		printQuota(cmd.OutOrStdout(), d.Library.Quota(cmd.Context()))
		return nil
	},
}

func printQuota(out io.Writer, q domain.Quota) {
	if q.Remaining < 0 {
		fmt.Fprintf(out, "Premium: unlimited explanations (%d used today)\n", q.Used)
		return
	}
	fmt.Fprintf(out, "Free explanations left today: %d of %d\n", q.Remaining, q.Limit)
	fmt.Fprintf(out, "  %s\n", renderQuotaBar(q.Used, q.Limit))
}
