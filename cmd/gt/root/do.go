package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datefujinari/giftytask/internal/ui"
)

func newDoCmd() *cobra.Command {
	var photo string

	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var photoURL *string
			if photo != "" {
				photoURL = &photo
			}
			res, err := svc.CompleteTask(ctx, args[0], photoURL)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s\n",
				ui.Good.Render(ui.IconDone+" Completed"), res.Task.Title,
				ui.Gold.Render(fmt.Sprintf("+%d XP", res.XPGained)))
			if res.LeveledUp {
				fmt.Fprintf(out, "%s %s\n", ui.BadgeLevelUp,
					ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)))
			}
			for _, g := range res.UnlockedGifts {
				line := fmt.Sprintf("%s %s", ui.Gold.Render(ui.IconGift+" Unlocked"), g.Title)
				if g.GiftURL != nil {
					line += " " + ui.Dim.Render(*g.GiftURL)
				}
				fmt.Fprintln(out, line)
			}
			for _, id := range res.NewThemes {
				fmt.Fprintf(out, "%s New theme: %s\n", ui.IconSparkle, ui.H2.Render(id))
			}
			for _, id := range res.NewBadges {
				fmt.Fprintf(out, "%s New badge: %s\n", ui.IconTrophy, ui.H2.Render(id))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&photo, "photo", "", "Photo evidence URL (for photo-verified tasks)")

	return cmd
}
