package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datefujinari/giftytask/internal/engine"
	"github.com/datefujinari/giftytask/internal/storage"
	"github.com/datefujinari/giftytask/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, streak, rings, badges, and themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := svc.User(ctx)
			if err != nil {
				return err
			}
			toNext := engine.XPToNextLevel(*u)
			nextReq := engine.XPRequiredForLevel(u.Level + 1)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, u.DisplayName))
			fmt.Fprintln(out, ui.LabelValue("Level", u.Level))
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d (next at %d, %d to go)", u.TotalXP, nextReq, toNext)))
			fmt.Fprintln(out, "")

			streak, err := svc.Streak(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconFlame+" Streak"))
			fmt.Fprintln(out, ui.LabelValue("Current", fmt.Sprintf("%d day(s)", streak.CurrentStreak)))
			fmt.Fprintln(out, ui.LabelValue("Longest", fmt.Sprintf("%d day(s)", streak.LongestStreak)))
			fmt.Fprintln(out, "")

			ring, err := svc.ActivityRing(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render("⭕ Today's Rings"))
			fmt.Fprintln(out, ui.RingBar("Move    ", ring.Move, 20))
			fmt.Fprintln(out, ui.RingBar("Exercise", ring.Exercise, 20))
			fmt.Fprintln(out, ui.RingBar("Stand   ", ring.Stand, 20))
			if ring.AllClosed() {
				fmt.Fprintln(out, ui.Good.Render("All rings closed! "+ui.IconTrophy))
			}
			fmt.Fprintln(out, "")

			records, err := svc.ActivityRepo().ListByUser(ctx, storage.MainUserID)
			if err != nil {
				return err
			}
			cfg := svc.Config()
			now := svc.Now()
			window := cfg.ActiveDaysWindow
			fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("📈 Last %d Days", window)))
			fmt.Fprintln(out, ui.LabelValue("Active days", engine.ActiveDays(records, window, now)))
			fmt.Fprintln(out, ui.LabelValue("Goal achieved", fmt.Sprintf("%d day(s) (goal %d/day)", engine.GoalAchievedDays(records, window, cfg.DailyGoal, now), cfg.DailyGoal)))
			fmt.Fprintln(out, ui.LabelValue("Avg completion", fmt.Sprintf("%.0f%%", engine.AverageCompletionRate(records, window, now)*100)))
			fmt.Fprintln(out, "")

			badges, err := svc.Badges(ctx)
			if err != nil {
				return err
			}
			earned := 0
			fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Badges"))
			for _, b := range badges {
				if !b.Earned {
					continue
				}
				earned++
				fmt.Fprintf(out, "- %s %s %s\n", b.Icon, b.Name, ui.Muted.Render(b.Description))
			}
			if earned == 0 {
				fmt.Fprintln(out, ui.Dim.Render("(none yet — complete a task to earn your first)"))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("🎨 Themes"))
			unlocked := make(map[string]bool, len(u.UnlockedThemes))
			for _, id := range u.UnlockedThemes {
				unlocked[id] = true
			}
			for _, th := range engine.Themes() {
				switch {
				case th.ID == u.CurrentTheme:
					fmt.Fprintf(out, "- %s %s\n", ui.Good.Render(th.Name), ui.Muted.Render("(current)"))
				case unlocked[th.ID]:
					fmt.Fprintf(out, "- %s\n", th.Name)
				default:
					fmt.Fprintf(out, "- %s %s\n", ui.Dim.Render(th.Name), ui.Muted.Render(fmt.Sprintf("(level %d)", th.RequiredLevel)))
				}
			}

			return nil
		},
	}

	return cmd
}
