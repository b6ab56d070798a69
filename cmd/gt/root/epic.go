package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datefujinari/giftytask/internal/engine"
	"github.com/datefujinari/giftytask/internal/ui"
)

func newEpicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Manage epics (task groups with a shared goal)",
	}
	cmd.AddCommand(newEpicAddCmd(), newEpicListCmd(), newEpicLinkCmd())
	return cmd
}

func newEpicLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <epic-id> <gift-id>",
		Short: "Attach a gift to an epic",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("epic-id and gift-id are required")
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

			epic, err := svc.LinkEpicGift(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Good.Render(ui.IconGift+" Linked"), epic.Title, ui.Muted.Render(*epic.GiftID))
			return nil
		},
	}

	return cmd
}

func newEpicAddCmd() *cobra.Command {
	var (
		description string
		giftID      string
		target      string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create an epic",
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

			in := engine.CreateEpicInput{Title: args[0]}
			if description != "" {
				in.Description = &description
			}
			if giftID != "" {
				in.GiftID = &giftID
			}
			if target != "" {
				in.TargetDate = &target
			}

			epic, err := svc.CreateEpic(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Good.Render(ui.IconEpic+" Created"), epic.Title, ui.Muted.Render(epic.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "%s Attach tasks with: %s\n",
				ui.Muted.Render("💡"), ui.Key.Render(fmt.Sprintf("gt add -e %s \"First step\"", epic.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "Epic description")
	cmd.Flags().StringVar(&giftID, "gift", "", "Gift unlocked by finishing this epic")
	cmd.Flags().StringVar(&target, "target", "", "Target date (YYYY-MM-DD)")

	return cmd
}

func newEpicListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List epics with progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			epics, err := svc.EpicRepo().ListAll(ctx)
			if err != nil {
				return err
			}
			tasks, err := svc.TaskRepo().ListAll(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconEpic, "Epics"))
			if len(epics) == 0 {
				fmt.Fprintln(out, ui.Dim.Render("(none)"))
				return nil
			}
			for _, e := range epics {
				progress := engine.EpicProgress(e, tasks)
				fmt.Fprintf(out, "%s %s  %s  %s\n",
					ui.IconEpic, e.Title,
					ui.RingBar("", progress, 16),
					ui.Dim.Render(fmt.Sprintf("%d task(s), %s", len(e.TaskIDs), e.Status)))
				fmt.Fprintln(out, "  "+ui.Muted.Render(e.ID))
			}
			return nil
		},
	}

	return cmd
}
