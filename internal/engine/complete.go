package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
	"github.com/datefujinari/giftytask/internal/storage"
)

// CompleteResult reports everything one completion event changed.
type CompleteResult struct {
	Task          domain.Task
	XPGained      int
	LevelBefore   int
	LevelAfter    int
	LeveledUp     bool
	UnlockedGifts []domain.Gift
	NewThemes     []string
	NewBadges     []string
}

// CompleteTask runs the full completion cascade for one task: validate,
// mark completed, credit XP, update the day streak and activity record,
// re-scan locked gifts, and stamp any epic that just became fully
// completed. The whole cascade commits atomically; a failing step leaves
// no partial mutation behind.
func (s *Service) CompleteTask(ctx context.Context, taskID string, photoURL *string) (*CompleteResult, error) {
	now := s.now()
	var res *CompleteResult

	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tasks := storage.NewTaskRepo(tx)
		users := storage.NewUserRepo(tx)
		epics := storage.NewEpicRepo(tx)
		gifts := storage.NewGiftRepo(tx)
		activity := storage.NewActivityRepo(tx)
		streaks := storage.NewStreakRepo(tx)

		if err := resetStaleRoutines(ctx, tasks, gifts, now); err != nil {
			return err
		}

		task, err := tasks.Get(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrTaskNotFound
		}
		if task.Status == domain.TaskCompleted {
			return ErrTaskAlreadyCompleted
		}
		if task.VerificationMode == domain.VerifyPhotoEvidence && (photoURL == nil || *photoURL == "") {
			return ErrEvidenceRequired
		}

		task.Status = domain.TaskCompleted
		task.CompletedDate = &now
		if task.VerificationMode == domain.VerifyPhotoEvidence {
			task.PhotoEvidenceURL = photoURL
		}
		task.UpdatedAt = now
		if err := tasks.Update(ctx, *task); err != nil {
			return err
		}

		u, err := users.GetOrCreateMain(ctx)
		if err != nil {
			return err
		}
		levelBefore := u.Level
		leveledUp, err := AddXP(u, task.XPReward, now)
		if err != nil {
			return err
		}

		all, err := tasks.ListAll(ctx)
		if err != nil {
			return err
		}

		if err := s.recordActivity(ctx, activity, task.XPReward, countTasksForDay(all, now), now); err != nil {
			return err
		}

		streak, err := streaks.Get(ctx, storage.MainUserID)
		if err != nil {
			return err
		}
		RecordStreakActivity(&streak, now)
		if err := streaks.Upsert(ctx, storage.MainUserID, streak); err != nil {
			return err
		}

		allEpics, err := epics.ListAll(ctx)
		if err != nil {
			return err
		}
		allGifts, err := gifts.ListAll(ctx)
		if err != nil {
			return err
		}

		pass := UnlockPass{
			Tasks:               all,
			Epics:               allEpics,
			User:                *u,
			JustCompletedTaskID: task.ID,
			Today:               now,
			DefaultRewardURL:    s.cfg.DefaultRewardURL,
		}
		unlock := EvaluateUnlocks(allGifts, pass)
		if err := persistGiftChanges(ctx, gifts, allGifts, unlock); err != nil {
			return err
		}

		if err := stampCompletedEpics(ctx, epics, allEpics, all, now); err != nil {
			return err
		}

		newThemes := SyncThemeUnlocks(u)
		checker := NewBadgeChecker(*u, all, allEpics, allGifts, streak)
		newBadges := SyncBadges(u, checker)
		if err := users.Update(ctx, *u); err != nil {
			return err
		}

		res = &CompleteResult{
			Task:          *task,
			XPGained:      task.XPReward,
			LevelBefore:   levelBefore,
			LevelAfter:    u.Level,
			LeveledUp:     leveledUp,
			UnlockedGifts: unlock.Unlocked,
			NewThemes:     newThemes,
			NewBadges:     newBadges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// EvaluateUnlocks re-scans every locked gift against the current state
// without a triggering completion. Streak conditions only expire here; the
// scan is idempotent, so running it twice in a row unlocks nothing new the
// second time.
func (s *Service) EvaluateUnlocks(ctx context.Context) ([]domain.Gift, error) {
	var unlocked []domain.Gift
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tasks := storage.NewTaskRepo(tx)
		epics := storage.NewEpicRepo(tx)
		gifts := storage.NewGiftRepo(tx)
		users := storage.NewUserRepo(tx)

		all, err := tasks.ListAll(ctx)
		if err != nil {
			return err
		}
		allEpics, err := epics.ListAll(ctx)
		if err != nil {
			return err
		}
		allGifts, err := gifts.ListAll(ctx)
		if err != nil {
			return err
		}
		u, err := users.GetOrCreateMain(ctx)
		if err != nil {
			return err
		}

		pass := UnlockPass{
			Tasks:            all,
			Epics:            allEpics,
			User:             *u,
			Today:            s.now(),
			DefaultRewardURL: s.cfg.DefaultRewardURL,
		}
		res := EvaluateUnlocks(allGifts, pass)
		if err := persistGiftChanges(ctx, gifts, allGifts, res); err != nil {
			return err
		}
		unlocked = res.Unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}

// RecordActivity folds one completion into today's activity record,
// creating the record lazily on the first completion of the day.
func (s *Service) RecordActivity(ctx context.Context, xpGained, totalTasksToday int) error {
	return s.recordActivity(ctx, s.activity, xpGained, totalTasksToday, s.now())
}

func (s *Service) recordActivity(ctx context.Context, repo *storage.ActivityRepo, xpGained, totalTasksToday int, now time.Time) error {
	day := StartOfDay(now)
	rec, err := repo.GetByDay(ctx, storage.MainUserID, day)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &domain.ActivityRecord{
			ID:     s.newID(),
			UserID: storage.MainUserID,
			Date:   day,
		}
	}
	rec.CompletedTasksCount++
	rec.TotalTasksCount = totalTasksToday
	rec.XPGained += xpGained
	rec.RecalculateRate()
	return repo.Upsert(ctx, *rec)
}

// ResetRoutineTasks returns routine tasks completed on an earlier day to
// pending so they can be completed again today. Streak counters on gifts
// whose LastStreakDate went stale are zeroed in the same pass; gap
// detection reads the gift's own date, so clearing the task's completion
// date here loses nothing.
func (s *Service) ResetRoutineTasks(ctx context.Context) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return resetStaleRoutines(ctx, storage.NewTaskRepo(tx), storage.NewGiftRepo(tx), s.now())
	})
}

func resetStaleRoutines(ctx context.Context, tasks *storage.TaskRepo, gifts *storage.GiftRepo, now time.Time) error {
	all, err := tasks.ListAll(ctx)
	if err != nil {
		return err
	}
	allGifts, err := gifts.ListAll(ctx)
	if err != nil {
		return err
	}

	broken := SweepBrokenStreaks(allGifts, now)
	swept := make(map[string]bool, len(broken))
	for _, id := range broken {
		swept[id] = true
	}
	for i := range allGifts {
		if !swept[allGifts[i].ID] {
			continue
		}
		if err := gifts.Update(ctx, allGifts[i]); err != nil {
			return err
		}
	}

	today := StartOfDay(now)
	for i := range all {
		t := &all[i]
		if !t.IsRoutine || t.Status != domain.TaskCompleted {
			continue
		}
		if t.CompletedDate == nil || !StartOfDay(*t.CompletedDate).Before(today) {
			continue
		}
		t.Status = domain.TaskPending
		t.CompletedDate = nil
		t.PhotoEvidenceURL = nil
		t.UpdatedAt = now
		if err := tasks.Update(ctx, *t); err != nil {
			return err
		}
	}
	return nil
}

// countTasksForDay counts the tasks relevant to one day's total: anything
// not archived that is due that day, is a routine, or was completed that
// day.
func countTasksForDay(tasks []domain.Task, day time.Time) int {
	d := StartOfDay(day)
	n := 0
	for _, t := range tasks {
		if t.Status == domain.TaskArchived {
			continue
		}
		switch {
		case t.IsRoutine:
			n++
		case t.DueDate != nil && StartOfDay(*t.DueDate).Equal(d):
			n++
		case t.CompletedDate != nil && StartOfDay(*t.CompletedDate).Equal(d):
			n++
		}
	}
	return n
}

func persistGiftChanges(ctx context.Context, repo *storage.GiftRepo, gifts []domain.Gift, res UnlockResult) error {
	changed := make(map[string]bool, len(res.ChangedIDs)+len(res.Unlocked))
	for _, id := range res.ChangedIDs {
		changed[id] = true
	}
	for _, g := range res.Unlocked {
		changed[g.ID] = true
	}
	for i := range gifts {
		if !changed[gifts[i].ID] {
			continue
		}
		if err := repo.Update(ctx, gifts[i]); err != nil {
			return err
		}
	}
	return nil
}

// stampCompletedEpics records the completion timestamp on epics whose
// derived full-completion predicate just became true. The predicate itself
// stays derived; the stamp only feeds display and history.
func stampCompletedEpics(ctx context.Context, repo *storage.EpicRepo, epics []domain.Epic, tasks []domain.Task, now time.Time) error {
	for i := range epics {
		e := &epics[i]
		if e.Status != domain.EpicActive && e.Status != domain.EpicPaused {
			continue
		}
		if !IsEpicFullyCompleted(*e, tasks) {
			continue
		}
		e.Status = domain.EpicCompleted
		e.CompletedDate = &now
		e.UpdatedAt = now
		if err := repo.Update(ctx, *e); err != nil {
			return err
		}
	}
	return nil
}
