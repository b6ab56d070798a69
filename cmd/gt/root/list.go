package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datefujinari/giftytask/internal/domain"
	"github.com/datefujinari/giftytask/internal/engine"
	"github.com/datefujinari/giftytask/internal/ui"
)

func newListCmd() *cobra.Command {
	var (
		filter   string
		epicID   string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			f := engine.TaskFilter(filter)
			if !f.IsValid() {
				return fmt.Errorf("unknown filter %q (all|pending|completed|today|overdue)", filter)
			}

			if err := svc.ResetRoutineTasks(ctx); err != nil {
				return err
			}
			tasks, err := svc.TaskRepo().ListAll(ctx)
			if err != nil {
				return err
			}
			tasks = engine.FilterTasks(tasks, f, svc.Now())
			if epicID != "" {
				kept := tasks[:0]
				for _, t := range tasks {
					if t.EpicID != nil && *t.EpicID == epicID {
						kept = append(kept, t)
					}
				}
				tasks = kept
			}
			if priority != "" {
				p := domain.Priority(priority)
				if !p.IsValid() {
					return fmt.Errorf("unknown priority %q", priority)
				}
				kept := tasks[:0]
				for _, t := range tasks {
					if t.Priority == p {
						kept = append(kept, t)
					}
				}
				tasks = kept
			}
			engine.SortTasks(tasks)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTask, "Tasks ("+filter+")"))
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Dim.Render("(none)"))
				return nil
			}
			for _, t := range tasks {
				line := fmt.Sprintf("%s %s  %s  %s  %s",
					ui.TaskIcon(t), t.Title,
					ui.PriorityText(t.Priority),
					ui.TaskStatusText(t.Status),
					ui.Dim.Render(fmt.Sprintf("+%d XP", t.XPReward)))
				if t.DueDate != nil {
					line += "  " + ui.Dim.Render("due "+t.DueDate.Format("2006-01-02"))
				}
				if t.RewardDisplayName != nil {
					line += "  " + ui.Gold.Render(ui.IconGift+" "+*t.RewardDisplayName)
				}
				fmt.Fprintln(out, line)
				fmt.Fprintln(out, "  "+ui.Muted.Render(t.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "pending", "Filter (all|pending|completed|today|overdue)")
	cmd.Flags().StringVarP(&epicID, "epic", "e", "", "Only tasks in this epic")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Only tasks at this priority")

	return cmd
}
