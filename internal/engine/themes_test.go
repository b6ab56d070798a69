package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datefujinari/giftytask/internal/domain"
)

func TestSyncThemeUnlocks(t *testing.T) {
	u := domain.User{Level: 1}
	added := SyncThemeUnlocks(&u)
	assert.Equal(t, []string{"default"}, added)

	u.Level = 5
	added = SyncThemeUnlocks(&u)
	assert.Equal(t, []string{"ocean", "forest"}, added)
	assert.Equal(t, []string{"default", "ocean", "forest"}, u.UnlockedThemes)

	// Re-running at the same level adds nothing.
	assert.Empty(t, SyncThemeUnlocks(&u))
}

func TestThemeUnlockedAt(t *testing.T) {
	level, ok := ThemeUnlockedAt("midnight")
	assert.True(t, ok)
	assert.Equal(t, 12, level)

	_, ok = ThemeUnlockedAt("vaporwave")
	assert.False(t, ok)
}

func TestSyncBadges(t *testing.T) {
	u := domain.User{Level: 2}
	tasks := []domain.Task{completedTask("t1")}
	checker := NewBadgeChecker(u, tasks, nil, nil, domain.StreakState{LongestStreak: 3})

	added := SyncBadges(&u, checker)
	assert.ElementsMatch(t, []string{"first_steps", "first_task", "warming_up"}, added)

	// A second sync with the same state is a no-op.
	checker = NewBadgeChecker(u, tasks, nil, nil, domain.StreakState{LongestStreak: 3})
	assert.Empty(t, SyncBadges(&u, checker))
}

func TestBadgeCheckerEpicWin(t *testing.T) {
	tasks := []domain.Task{completedTask("t1")}
	epics := []domain.Epic{{ID: "e1", TaskIDs: []string{"t1"}}}
	checker := NewBadgeChecker(domain.User{Level: 1}, tasks, epics, nil, domain.StreakState{})

	earned := false
	for _, b := range checker.Badges() {
		if b.ID == "epic_win" {
			earned = b.Earned
		}
	}
	assert.True(t, earned)
}
