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

func newAddCmd() *cobra.Command {
	var (
		description string
		epicID      string
		priority    string
		due         string
		xp          int
		routine     bool
		photo       bool
		rewardName  string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
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

			in := engine.CreateTaskInput{
				Title:     args[0],
				Priority:  domain.Priority(priority),
				IsRoutine: routine,
			}
			if description != "" {
				in.Description = &description
			}
			if epicID != "" {
				in.EpicID = &epicID
			}
			if due != "" {
				in.DueDate = &due
			}
			if cmd.Flags().Changed("xp") {
				in.XPReward = &xp
			}
			if photo {
				in.VerificationMode = domain.VerifyPhotoEvidence
			}
			if rewardName != "" {
				in.RewardDisplayName = &rewardName
			}

			task, err := svc.CreateTask(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconTask+" Added"), task.Title,
				ui.Muted.Render(task.ID),
				ui.Dim.Render(fmt.Sprintf("(+%d XP on completion)", task.XPReward)))
			if task.VerificationMode == domain.VerifyPhotoEvidence {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Dim.Render(ui.IconCamera+" Completion will need photo evidence: gt do <id> --photo <url>"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "Task description")
	cmd.Flags().StringVarP(&epicID, "epic", "e", "", "Epic to attach the task to")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&xp, "xp", engine.DefaultTaskXP, "XP awarded on completion")
	cmd.Flags().BoolVar(&routine, "routine", false, "Mark as a daily routine (streak conditions track it)")
	cmd.Flags().BoolVar(&photo, "photo-evidence", false, "Require photo evidence to complete")
	cmd.Flags().StringVar(&rewardName, "reward-name", "", "Display name of the attached reward")

	return cmd
}
