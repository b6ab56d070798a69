package engine

import (
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

// EpicProgress returns the completed fraction of an epic's child tasks.
// An epic without children has zero progress. Task ids that no longer
// resolve are skipped.
func EpicProgress(epic domain.Epic, tasks []domain.Task) float64 {
	byID := make(map[string]domain.TaskStatus, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t.Status
	}

	total := 0
	completed := 0
	for _, id := range epic.TaskIDs {
		status, ok := byID[id]
		if !ok {
			continue
		}
		total++
		if status == domain.TaskCompleted {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

// IsEpicFullyCompleted reports the derived full-completion predicate: at
// least one resolvable child task, and every one of them completed. It is
// never stored, always recomputed.
func IsEpicFullyCompleted(epic domain.Epic, tasks []domain.Task) bool {
	byID := make(map[string]domain.TaskStatus, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t.Status
	}

	seen := 0
	for _, id := range epic.TaskIDs {
		status, ok := byID[id]
		if !ok {
			continue
		}
		seen++
		if status != domain.TaskCompleted {
			return false
		}
	}
	return seen > 0
}

// AverageEpicProgress is the mean progress across the given epics, zero
// when the list is empty.
func AverageEpicProgress(epics []domain.Epic, tasks []domain.Task) float64 {
	if len(epics) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range epics {
		sum += EpicProgress(e, tasks)
	}
	return sum / float64(len(epics))
}

// ActiveDays counts the distinct calendar days inside the trailing window
// [today-windowDays, today] with at least one completed task.
func ActiveDays(records []domain.ActivityRecord, windowDays int, today time.Time) int {
	end := StartOfDay(today)
	start := end.AddDate(0, 0, -windowDays)

	days := make(map[time.Time]struct{})
	for _, r := range records {
		day := StartOfDay(r.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		if r.CompletedTasksCount > 0 {
			days[day] = struct{}{}
		}
	}
	return len(days)
}

// GoalAchievedDays counts the days in the trailing window that met the
// daily goal.
func GoalAchievedDays(records []domain.ActivityRecord, windowDays, dailyGoal int, today time.Time) int {
	end := StartOfDay(today)
	start := end.AddDate(0, 0, -windowDays)

	n := 0
	for _, r := range records {
		day := StartOfDay(r.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		if r.CompletedTasksCount >= dailyGoal {
			n++
		}
	}
	return n
}

// AverageCompletionRate is the mean completion rate of the records in the
// trailing window, zero when there are none.
func AverageCompletionRate(records []domain.ActivityRecord, windowDays int, today time.Time) float64 {
	end := StartOfDay(today)
	start := end.AddDate(0, 0, -windowDays)

	sum := 0.0
	n := 0
	for _, r := range records {
		day := StartOfDay(r.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		sum += r.CompletionRate
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ComputeActivityRing builds the three ring values: move from completions
// against the daily goal, exercise from average epic progress, stand from
// active days against the window. Each ring clamps independently to [0,1].
func ComputeActivityRing(completedToday, dailyGoal int, epicProgressAvg float64, activeDays, windowDays int) domain.ActivityRing {
	move := 0.0
	if dailyGoal > 0 {
		move = float64(completedToday) / float64(dailyGoal)
	}
	stand := 0.0
	if windowDays > 0 {
		stand = float64(activeDays) / float64(windowDays)
	}
	return domain.ActivityRing{
		Move:     clamp01(move),
		Exercise: clamp01(epicProgressAvg),
		Stand:    clamp01(stand),
	}
}
