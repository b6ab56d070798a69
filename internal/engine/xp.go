package engine

import (
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

// XPPerLevel is the per-level XP step: moving from level L to L+1 costs
// L*100 lifetime XP total, so level 2 arrives at 100 XP, level 3 at 200.
const XPPerLevel = 100

// DefaultTaskXP is the reward assigned when a task is created without one.
const DefaultTaskXP = 10

// XPRequiredForLevel returns the total XP threshold at which the given
// level is reached. Level 1 is the floor and requires nothing.
func XPRequiredForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * XPPerLevel
}

// LevelForTotalXP is the closed form of the incremental level walk in
// AddXP: the highest level whose threshold is within totalXP.
func LevelForTotalXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	return totalXP/XPPerLevel + 1
}

// AddXP credits amount to both the current-cycle and lifetime XP counters
// and walks the level up while the next threshold is met. It reports
// whether the level increased. Negative amounts are a contract violation
// and leave the user untouched.
func AddXP(u *domain.User, amount int, now time.Time) (bool, error) {
	if amount < 0 {
		return false, InvalidStateError{Op: "add xp", Reason: "amount must be >= 0"}
	}
	if u.Level < 1 {
		u.Level = 1
	}

	before := u.Level
	u.TotalXP += amount
	u.XP += amount
	for u.TotalXP >= XPRequiredForLevel(u.Level+1) {
		u.Level++
	}
	u.UpdatedAt = now
	return u.Level > before, nil
}

// XPToNextLevel returns how much lifetime XP is still missing for the next
// level, never negative.
func XPToNextLevel(u domain.User) int {
	level := u.Level
	if level < 1 {
		level = 1
	}
	missing := XPRequiredForLevel(level+1) - u.TotalXP
	if missing < 0 {
		return 0
	}
	return missing
}
