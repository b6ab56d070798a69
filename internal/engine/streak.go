package engine

import (
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

// StartOfDay truncates t to its calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar-day boundaries between a and b
// (positive when b is after a).
func DaysBetween(a, b time.Time) int {
	da := StartOfDay(a)
	db := StartOfDay(b)
	return int(db.Sub(da).Hours() / 24)
}

// RecordStreakActivity advances the day-streak state machine for an
// activity on the given date:
//
//   - first ever activity starts the streak at 1
//   - a second activity on the same calendar day is a no-op
//   - activity exactly one day after the last extends the streak
//   - a gap of more than one day restarts the streak at 1; the longest
//     count is never lowered
func RecordStreakActivity(s *domain.StreakState, date time.Time) {
	day := StartOfDay(date)

	if s.LastActivityDate == nil {
		s.CurrentStreak = 1
		if s.LongestStreak < 1 {
			s.LongestStreak = 1
		}
		s.LastActivityDate = &day
		return
	}

	switch gap := DaysBetween(*s.LastActivityDate, day); {
	case gap == 0:
		// Re-entry within the same day.
	case gap == 1:
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		s.LastActivityDate = &day
	default:
		s.CurrentStreak = 1
		s.LastActivityDate = &day
	}
}

// SweepBrokenStreaks expires stalled per-gift streak progress. Every locked
// gift with a streak condition drops its counter to 0 when LastStreakDate is
// more than one day before today. The gift carries that date itself, so the
// sweep stays correct after the daily routine reset clears completion dates
// on the tasks. It runs once per evaluation pass whether or not a completion
// just happened, and returns the ids of the gifts it reset.
func SweepBrokenStreaks(gifts []domain.Gift, today time.Time) []string {
	var reset []string
	day := StartOfDay(today)
	for i := range gifts {
		g := &gifts[i]
		if g.Status != domain.GiftLocked || g.Condition.Type != domain.CondStreak {
			continue
		}
		if g.LastStreakDate == nil || g.CurrentStreak == 0 {
			continue
		}
		if DaysBetween(*g.LastStreakDate, day) > 1 {
			g.CurrentStreak = 0
			g.LastStreakDate = nil
			g.UpdatedAt = day
			reset = append(reset, g.ID)
		}
	}
	return reset
}
