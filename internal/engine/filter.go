package engine

import (
	"sort"
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

// TaskFilter selects a slice of the task list for display.
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterPending   TaskFilter = "pending"
	FilterCompleted TaskFilter = "completed"
	FilterToday     TaskFilter = "today"
	FilterOverdue   TaskFilter = "overdue"
)

func (f TaskFilter) IsValid() bool {
	switch f {
	case FilterAll, FilterPending, FilterCompleted, FilterToday, FilterOverdue:
		return true
	default:
		return false
	}
}

// FilterTasks returns the tasks matching the filter. Archived tasks are
// excluded from every filter except "all".
func FilterTasks(tasks []domain.Task, filter TaskFilter, today time.Time) []domain.Task {
	day := StartOfDay(today)
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter != FilterAll && t.Status == domain.TaskArchived {
			continue
		}
		switch filter {
		case FilterAll:
			out = append(out, t)
		case FilterPending:
			if t.Status == domain.TaskPending || t.Status == domain.TaskInProgress {
				out = append(out, t)
			}
		case FilterCompleted:
			if t.Status == domain.TaskCompleted {
				out = append(out, t)
			}
		case FilterToday:
			if t.Status == domain.TaskCompleted {
				continue
			}
			if t.IsRoutine || (t.DueDate != nil && !StartOfDay(*t.DueDate).After(day)) {
				out = append(out, t)
			}
		case FilterOverdue:
			if t.Status == domain.TaskCompleted {
				continue
			}
			if t.DueDate != nil && StartOfDay(*t.DueDate).Before(day) {
				out = append(out, t)
			}
		}
	}
	return out
}

// SortTasks orders tasks by priority, then earliest due date, then
// creation time. Tasks without a due date sort after dated ones within
// the same priority.
func SortTasks(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra < rb
		}
		switch {
		case a.DueDate != nil && b.DueDate != nil:
			if !a.DueDate.Equal(*b.DueDate) {
				return a.DueDate.Before(*b.DueDate)
			}
		case a.DueDate != nil:
			return true
		case b.DueDate != nil:
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
