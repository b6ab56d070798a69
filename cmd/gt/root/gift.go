package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datefujinari/giftytask/internal/domain"
	"github.com/datefujinari/giftytask/internal/engine"
	"github.com/datefujinari/giftytask/internal/ui"
)

func newGiftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gift",
		Short: "Manage gifts (rewards gated by unlock conditions)",
	}
	cmd.AddCommand(newGiftAddCmd(), newGiftUpdateCmd(), newGiftListCmd(), newGiftRedeemCmd())
	return cmd
}

func newGiftUpdateCmd() *cobra.Command {
	var (
		title       string
		description string
		price       float64
		rewardURL   string
		kind        string
		targets     []string
		streakDays  int
		xpThreshold int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a locked gift",
		Long: `Edit a gift that has not unlocked yet.

Passing --condition replaces the whole unlock condition (same flags as
gift add) and restarts any streak progress already made.`,
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

			in := engine.UpdateGiftInput{}
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("desc") {
				in.Description = &description
			}
			if cmd.Flags().Changed("price") {
				in.Price = &price
			}
			if cmd.Flags().Changed("url") {
				in.RewardURL = &rewardURL
			}
			if cmd.Flags().Changed("condition") {
				cond := domain.UnlockCondition{
					Type:      domain.NormalizeConditionType(kind),
					TargetIDs: targets,
				}
				if cmd.Flags().Changed("days") {
					cond.StreakDays = &streakDays
				}
				if cmd.Flags().Changed("xp") {
					cond.XPThreshold = &xpThreshold
				}
				in.Condition = &cond
			}

			gift, err := svc.UpdateGift(ctx, args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Good.Render(ui.IconGift+" Updated"), gift.Title, ui.Muted.Render(gift.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "desc", "", "New description")
	cmd.Flags().Float64Var(&price, "price", 0, "New price")
	cmd.Flags().StringVar(&rewardURL, "url", "", "New reward destination")
	cmd.Flags().StringVarP(&kind, "condition", "c", "", "Replacement condition kind")
	cmd.Flags().StringArrayVarP(&targets, "target", "t", nil, "Condition target id (repeatable)")
	cmd.Flags().IntVar(&streakDays, "days", 0, "Streak length for the streak kind")
	cmd.Flags().IntVar(&xpThreshold, "xp", 0, "Lifetime XP for the xp_threshold kind")

	return cmd
}

func newGiftAddCmd() *cobra.Command {
	var (
		description string
		kind        string
		targets     []string
		streakDays  int
		xpThreshold int
		price       float64
		currency    string
		rewardURL   string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a locked gift",
		Long: `Create a gift behind an unlock condition.

Condition kinds:
  single_task     --target <task-id>
  multiple_tasks  --target <id> --target <id> ... (max 10)
  epic_completion --target <epic-id>
  streak          --target <routine-task-id> --days <n>
  xp_threshold    --xp <total>`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
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

			cond := domain.UnlockCondition{
				Type:      domain.NormalizeConditionType(kind),
				TargetIDs: targets,
			}
			if cmd.Flags().Changed("days") {
				cond.StreakDays = &streakDays
			}
			if cmd.Flags().Changed("xp") {
				cond.XPThreshold = &xpThreshold
			}

			in := engine.CreateGiftInput{
				Title:     args[0],
				Condition: cond,
				Price:     price,
				Currency:  currency,
			}
			if description != "" {
				in.Description = &description
			}
			if rewardURL != "" {
				in.RewardURL = &rewardURL
			}

			gift, err := svc.CreateGift(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconGift+" Created"), gift.Title,
				ui.GiftStatusText(gift.Status), ui.Muted.Render(gift.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "Gift description")
	cmd.Flags().StringVarP(&kind, "condition", "c", "single_task", "Condition kind")
	cmd.Flags().StringArrayVarP(&targets, "target", "t", nil, "Target task/epic id (repeatable)")
	cmd.Flags().IntVar(&streakDays, "days", 0, "Required streak length (streak conditions)")
	cmd.Flags().IntVar(&xpThreshold, "xp", 0, "Required lifetime XP (xp_threshold conditions)")
	cmd.Flags().Float64Var(&price, "price", 0, "Price of the reward")
	cmd.Flags().StringVar(&currency, "currency", "JPY", "Price currency")
	cmd.Flags().StringVar(&rewardURL, "url", "", "Reward destination shown on unlock")

	return cmd
}

func newGiftListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gifts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Re-check locked gifts so display reflects the current state.
			if _, err := svc.EvaluateUnlocks(ctx); err != nil {
				return err
			}

			gifts, err := svc.GiftRepo().ListAll(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconGift, "Gifts"))
			if len(gifts) == 0 {
				fmt.Fprintln(out, ui.Dim.Render("(none)"))
				return nil
			}
			for _, g := range gifts {
				line := fmt.Sprintf("%s %s  %s", ui.IconGift, g.Title, ui.GiftStatusText(g.Status))
				if g.Status == domain.GiftLocked && g.Condition.Type == domain.CondStreak && g.Condition.StreakDays != nil {
					line += ui.Dim.Render(fmt.Sprintf("  %s %d/%d days", ui.IconFlame, g.CurrentStreak, *g.Condition.StreakDays))
				}
				if g.Price > 0 {
					line += ui.Dim.Render(fmt.Sprintf("  %.0f %s", g.Price, g.Currency))
				}
				if g.Status == domain.GiftUnlocked && g.GiftURL != nil {
					line += "  " + ui.Key.Render(*g.GiftURL)
				}
				fmt.Fprintln(out, line)
				fmt.Fprintln(out, "  "+ui.Muted.Render(g.ID))
			}
			return nil
		},
	}

	return cmd
}

func newGiftRedeemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem <id>",
		Short: "Redeem an unlocked gift",
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

			gift, err := svc.RedeemGift(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Gold.Render(ui.IconTrophy+" Redeemed"), gift.Title)
			if gift.GiftURL != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Reward", *gift.GiftURL))
			}
			return nil
		},
	}

	return cmd
}
