package engine

import (
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

// DefaultHeatmapWindowDays is the trailing span of the calendar grid.
const DefaultHeatmapWindowDays = 365

// HeatmapIntensity grades a day's completed-task count against the daily
// goal g on the 0-4 scale: 0 for nothing, then below g/2, below g, below
// 2g, and 4 at 2g or more.
func HeatmapIntensity(completedCount, dailyGoal int) int {
	switch {
	case completedCount <= 0:
		return 0
	case completedCount >= dailyGoal*2:
		return 4
	case completedCount >= dailyGoal:
		return 3
	// Compared without truncation so odd goals keep their half point:
	// with g=5 a 2-count day is below 2.5 and grades 1, not 2.
	case completedCount*2 >= dailyGoal:
		return 2
	default:
		return 1
	}
}

// ComputeHeatmap projects activity records onto a fixed-length daily
// series trailing back from today, one cell per day, oldest first. Days
// without a record get intensity 0. The projection is pure and recomputed
// on demand.
func ComputeHeatmap(records []domain.ActivityRecord, windowDays, dailyGoal int, today time.Time) []domain.HeatmapCell {
	if windowDays <= 0 {
		return nil
	}

	counts := make(map[time.Time]int, len(records))
	for _, r := range records {
		counts[StartOfDay(r.Date)] = r.CompletedTasksCount
	}

	end := StartOfDay(today)
	cells := make([]domain.HeatmapCell, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		cells = append(cells, domain.HeatmapCell{
			Date:      day,
			Intensity: HeatmapIntensity(counts[day], dailyGoal),
		})
	}
	return cells
}
