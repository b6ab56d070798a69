package engine

import "github.com/datefujinari/giftytask/internal/domain"

// Badge represents an earnable badge shown on the user profile.
type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// BadgeChecker derives which badges the user has earned from the current
// collections. It never writes anything; SyncBadges applies the result.
type BadgeChecker struct {
	user   domain.User
	tasks  []domain.Task
	gifts  []domain.Gift
	epics  []domain.Epic
	streak domain.StreakState
}

func NewBadgeChecker(user domain.User, tasks []domain.Task, epics []domain.Epic, gifts []domain.Gift, streak domain.StreakState) *BadgeChecker {
	return &BadgeChecker{
		user:   user,
		tasks:  tasks,
		epics:  epics,
		gifts:  gifts,
		streak: streak,
	}
}

// Badges returns all badges with their earned status.
func (c *BadgeChecker) Badges() []Badge {
	return []Badge{
		// Level milestones
		c.levelBadge("first_steps", "First Steps", "Reach level 2", "🌱", 2),
		c.levelBadge("climbing", "Climbing", "Reach level 5", "🌿", 5),
		c.levelBadge("seasoned", "Seasoned", "Reach level 10", "⭐", 10),
		c.levelBadge("veteran", "Veteran", "Reach level 20", "🌟", 20),

		// Task completion milestones
		c.taskCountBadge("first_task", "First Task", "Complete 1 task", "✓", 1),
		c.taskCountBadge("productive", "Productive", "Complete 10 tasks", "📋", 10),
		c.taskCountBadge("achiever", "Achiever", "Complete 50 tasks", "🏅", 50),
		c.taskCountBadge("powerhouse", "Powerhouse", "Complete 100 tasks", "🏆", 100),

		// Streaks
		c.streakBadge("warming_up", "Warming Up", "3-day streak", "🔥", 3),
		c.streakBadge("on_fire", "On Fire", "7-day streak", "🔥", 7),
		c.streakBadge("unstoppable", "Unstoppable", "30-day streak", "🌋", 30),

		// Gifts and epics
		c.giftBadge("first_gift", "First Gift", "Unlock a gift", "🎁", 1),
		c.giftBadge("collector", "Collector", "Unlock 5 gifts", "🛍️", 5),
		c.epicBadge("epic_win", "Epic Win", "Fully complete an epic", "🏔️"),
	}
}

// EarnedCount returns how many badges are currently earned.
func (c *BadgeChecker) EarnedCount() int {
	n := 0
	for _, b := range c.Badges() {
		if b.Earned {
			n++
		}
	}
	return n
}

func (c *BadgeChecker) levelBadge(id, name, desc, icon string, level int) Badge {
	return Badge{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.user.Level >= level}
}

func (c *BadgeChecker) taskCountBadge(id, name, desc, icon string, count int) Badge {
	done := 0
	for _, t := range c.tasks {
		if t.Status == domain.TaskCompleted {
			done++
		}
	}
	return Badge{ID: id, Name: name, Description: desc, Icon: icon, Earned: done >= count}
}

func (c *BadgeChecker) streakBadge(id, name, desc, icon string, days int) Badge {
	return Badge{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.streak.LongestStreak >= days}
}

func (c *BadgeChecker) giftBadge(id, name, desc, icon string, count int) Badge {
	unlocked := 0
	for _, g := range c.gifts {
		if g.Status != domain.GiftLocked {
			unlocked++
		}
	}
	return Badge{ID: id, Name: name, Description: desc, Icon: icon, Earned: unlocked >= count}
}

func (c *BadgeChecker) epicBadge(id, name, desc, icon string) Badge {
	earned := false
	for _, e := range c.epics {
		if IsEpicFullyCompleted(e, c.tasks) {
			earned = true
			break
		}
	}
	return Badge{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

// SyncBadges merges newly earned badges into the user's set and returns
// the ids added this call. Earned badges are never removed.
func SyncBadges(u *domain.User, checker *BadgeChecker) []string {
	have := make(map[string]bool, len(u.UnlockedBadges))
	for _, id := range u.UnlockedBadges {
		have[id] = true
	}

	var added []string
	for _, b := range checker.Badges() {
		if !b.Earned || have[b.ID] {
			continue
		}
		u.UnlockedBadges = append(u.UnlockedBadges, b.ID)
		added = append(added, b.ID)
	}
	return added
}
