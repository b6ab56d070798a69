package engine

import (
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

// DefaultRewardURL is the sentinel destination used when neither the gift
// nor its condition kind supplies one.
const DefaultRewardURL = "https://linegift.line.me/"

// UnlockPass is the read-only snapshot one evaluation pass runs over.
// JustCompletedTaskID names the task whose completion triggered the pass;
// it is empty for an idempotent full re-scan, in which case streak
// conditions only expire, never advance.
type UnlockPass struct {
	Tasks               []domain.Task
	Epics               []domain.Epic
	User                domain.User
	JustCompletedTaskID string
	Today               time.Time
	DefaultRewardURL    string
}

// UnlockResult reports what one pass changed. Unlocked holds the gifts
// that transitioned to unlocked this pass; ChangedIDs additionally lists
// gifts whose streak counter moved without unlocking.
type UnlockResult struct {
	Unlocked   []domain.Gift
	ChangedIDs []string
}

// EvaluateUnlocks runs one evaluation pass over gifts, mutating them in
// place. Only gifts in status locked are inspected, which makes the pass
// idempotent and the status monotonic: an unlocked or redeemed gift is
// never touched again. Gifts unlock independently of each other, so the
// iteration order across gifts does not matter. After the satisfaction
// checks the breakage sweep expires any streak gifts that went stale.
func EvaluateUnlocks(gifts []domain.Gift, pass UnlockPass) UnlockResult {
	taskByID := make(map[string]*domain.Task, len(pass.Tasks))
	for i := range pass.Tasks {
		taskByID[pass.Tasks[i].ID] = &pass.Tasks[i]
	}
	epicByID := make(map[string]*domain.Epic, len(pass.Epics))
	for i := range pass.Epics {
		epicByID[pass.Epics[i].ID] = &pass.Epics[i]
	}

	var res UnlockResult
	for i := range gifts {
		g := &gifts[i]
		if g.Status != domain.GiftLocked {
			continue
		}

		cond := g.Condition
		switch cond.Type {
		case domain.CondEpicCompletion:
			if len(cond.TargetIDs) == 0 {
				continue
			}
			epic := epicByID[cond.TargetIDs[0]]
			if epic != nil && IsEpicFullyCompleted(*epic, pass.Tasks) {
				unlockGift(g, pass)
				res.Unlocked = append(res.Unlocked, *g)
			}

		case domain.CondSingleTask:
			if len(cond.TargetIDs) == 0 {
				continue
			}
			task := taskByID[cond.TargetIDs[0]]
			if task != nil && task.Status == domain.TaskCompleted {
				unlockGift(g, pass)
				res.Unlocked = append(res.Unlocked, *g)
			}

		case domain.CondMultipleTasks:
			if len(cond.TargetIDs) == 0 {
				continue
			}
			allDone := true
			for _, id := range cond.TargetIDs {
				task := taskByID[id]
				if task == nil || task.Status != domain.TaskCompleted {
					allDone = false
					break
				}
			}
			if allDone {
				unlockGift(g, pass)
				res.Unlocked = append(res.Unlocked, *g)
			}

		case domain.CondStreak:
			if len(cond.TargetIDs) == 0 || cond.StreakDays == nil {
				continue
			}
			routineID := cond.TargetIDs[0]
			task := taskByID[routineID]
			if task == nil || !task.IsRoutine {
				continue
			}
			// The counter advances only on the event where this exact
			// routine task was the one just completed.
			if pass.JustCompletedTaskID != routineID {
				continue
			}
			today := StartOfDay(pass.Today)
			if g.LastStreakDate != nil {
				switch gap := DaysBetween(*g.LastStreakDate, today); {
				case gap == 0:
					// Already counted today.
					continue
				case gap > 1:
					g.CurrentStreak = 0
				}
			}
			g.CurrentStreak++
			g.LastStreakDate = &today
			if g.CurrentStreak >= *cond.StreakDays {
				unlockGift(g, pass)
				res.Unlocked = append(res.Unlocked, *g)
			} else {
				g.UpdatedAt = pass.Today
				res.ChangedIDs = append(res.ChangedIDs, g.ID)
			}

		case domain.CondXPThreshold:
			if cond.XPThreshold == nil {
				continue
			}
			if pass.User.TotalXP >= *cond.XPThreshold {
				unlockGift(g, pass)
				res.Unlocked = append(res.Unlocked, *g)
			}
		}
	}

	res.ChangedIDs = append(res.ChangedIDs, SweepBrokenStreaks(gifts, pass.Today)...)
	return res
}

// unlockGift stamps the locked -> unlocked transition: unlock time, the
// resolved reward destination, and cleared streak bookkeeping.
func unlockGift(g *domain.Gift, pass UnlockPass) {
	now := pass.Today
	url := resolveRewardURL(*g, pass.DefaultRewardURL)

	g.Status = domain.GiftUnlocked
	g.GiftURL = &url
	g.UnlockedAt = &now
	g.UpdatedAt = now
	g.CurrentStreak = 0
	g.LastStreakDate = nil
}

// resolveRewardURL picks the unlock destination. Precedence: the authored
// rewardUrl, then a previously provisioned giftURL, then the configured
// default link.
func resolveRewardURL(g domain.Gift, fallback string) string {
	if g.RewardURL != nil && *g.RewardURL != "" {
		return *g.RewardURL
	}
	if g.GiftURL != nil && *g.GiftURL != "" {
		return *g.GiftURL
	}
	if fallback != "" {
		return fallback
	}
	return DefaultRewardURL
}
