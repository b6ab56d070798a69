package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
	"github.com/datefujinari/giftytask/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(db, Config{})
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return base }

	seq := 0
	svc.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	return svc
}

// setClock moves the service's injected clock to noon on the given day.
func setClock(svc *Service, day time.Time) {
	at := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, day.Location())
	svc.Now = func() time.Time { return at }
}

func mustCreateTask(t *testing.T, svc *Service, in CreateTaskInput) *domain.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func mustComplete(t *testing.T, svc *Service, taskID string) *CompleteResult {
	t.Helper()
	res, err := svc.CompleteTask(context.Background(), taskID, nil)
	if err != nil {
		t.Fatalf("complete %s: %v", taskID, err)
	}
	return res
}

func TestCompleteTaskAwardsXPAndStampsTask(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "write report"})
	res := mustComplete(t, svc, task.ID)

	if res.XPGained != DefaultTaskXP {
		t.Fatalf("XPGained=%d, want %d", res.XPGained, DefaultTaskXP)
	}
	if res.Task.Status != domain.TaskCompleted || res.Task.CompletedDate == nil {
		t.Fatalf("task not stamped completed: %+v", res.Task)
	}

	u, err := svc.User(ctx)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if u.TotalXP != DefaultTaskXP {
		t.Fatalf("TotalXP=%d, want %d", u.TotalXP, DefaultTaskXP)
	}
	if u.Level != 1 {
		t.Fatalf("Level=%d, want 1", u.Level)
	}
}

func TestCompleteTaskLevelsUpAtThreshold(t *testing.T) {
	svc := newTestService(t)

	xp := 100
	task := mustCreateTask(t, svc, CreateTaskInput{Title: "big one", XPReward: &xp})
	res := mustComplete(t, svc, task.ID)

	if !res.LeveledUp {
		t.Fatal("expected a level up at 100 total XP")
	}
	if res.LevelBefore != 1 || res.LevelAfter != 2 {
		t.Fatalf("level %d -> %d, want 1 -> 2", res.LevelBefore, res.LevelAfter)
	}
}

func TestCompleteTaskRejectsDoubleCompletion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "once only"})
	mustComplete(t, svc, task.ID)

	_, err := svc.CompleteTask(ctx, task.ID, nil)
	if !errors.Is(err, ErrTaskAlreadyCompleted) {
		t.Fatalf("err=%v, want ErrTaskAlreadyCompleted", err)
	}

	u, err := svc.User(ctx)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if u.TotalXP != DefaultTaskXP {
		t.Fatalf("TotalXP=%d after rejected repeat, want %d", u.TotalXP, DefaultTaskXP)
	}
}

func TestCompleteTaskUnknownID(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CompleteTask(context.Background(), "nope", nil)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("err=%v, want ErrTaskNotFound", err)
	}
}

func TestCompleteTaskRequiresPhotoEvidence(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{
		Title:            "gym session",
		VerificationMode: domain.VerifyPhotoEvidence,
	})

	_, err := svc.CompleteTask(ctx, task.ID, nil)
	if !errors.Is(err, ErrEvidenceRequired) {
		t.Fatalf("err=%v, want ErrEvidenceRequired", err)
	}

	url := "file:///photos/1.jpg"
	res, err := svc.CompleteTask(ctx, task.ID, &url)
	if err != nil {
		t.Fatalf("complete with evidence: %v", err)
	}
	if res.Task.PhotoEvidenceURL == nil || *res.Task.PhotoEvidenceURL != url {
		t.Fatalf("evidence url not stored: %+v", res.Task)
	}
}

func TestCompleteTaskRecordsDailyActivity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustCreateTask(t, svc, CreateTaskInput{Title: "first"})
	b := mustCreateTask(t, svc, CreateTaskInput{Title: "second"})
	mustComplete(t, svc, a.ID)
	mustComplete(t, svc, b.ID)

	rec, err := svc.ActivityRepo().GetByDay(ctx, storage.MainUserID, StartOfDay(svc.Now()))
	if err != nil {
		t.Fatalf("get activity: %v", err)
	}
	if rec == nil {
		t.Fatal("no activity record written")
	}
	if rec.CompletedTasksCount != 2 {
		t.Fatalf("CompletedTasksCount=%d, want 2", rec.CompletedTasksCount)
	}
	if rec.XPGained != 2*DefaultTaskXP {
		t.Fatalf("XPGained=%d, want %d", rec.XPGained, 2*DefaultTaskXP)
	}
}

func TestCompleteTaskUnlocksSingleTaskGift(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "finish thesis"})
	gift, err := svc.CreateGift(ctx, CreateGiftInput{
		Title: "sushi dinner",
		Condition: domain.UnlockCondition{
			Type:      domain.CondSingleTask,
			TargetIDs: []string{task.ID},
		},
	})
	if err != nil {
		t.Fatalf("create gift: %v", err)
	}

	res := mustComplete(t, svc, task.ID)
	if len(res.UnlockedGifts) != 1 || res.UnlockedGifts[0].ID != gift.ID {
		t.Fatalf("UnlockedGifts=%+v, want [%s]", res.UnlockedGifts, gift.ID)
	}

	stored, err := svc.GiftRepo().Get(ctx, gift.ID)
	if err != nil {
		t.Fatalf("get gift: %v", err)
	}
	if stored.Status != domain.GiftUnlocked {
		t.Fatalf("status=%s, want unlocked", stored.Status)
	}
	if stored.GiftURL == nil || *stored.GiftURL != DefaultRewardURL {
		t.Fatalf("GiftURL=%v, want default reward link", stored.GiftURL)
	}
	if stored.UnlockedAt == nil {
		t.Fatal("UnlockedAt not stamped")
	}
}

func TestCompleteTaskStampsEpicCompletion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	epic, err := svc.CreateEpic(ctx, CreateEpicInput{Title: "spring cleaning"})
	if err != nil {
		t.Fatalf("create epic: %v", err)
	}
	a := mustCreateTask(t, svc, CreateTaskInput{Title: "kitchen", EpicID: &epic.ID})
	b := mustCreateTask(t, svc, CreateTaskInput{Title: "garage", EpicID: &epic.ID})

	mustComplete(t, svc, a.ID)
	mid, err := svc.EpicRepo().Get(ctx, epic.ID)
	if err != nil {
		t.Fatalf("get epic: %v", err)
	}
	if mid.Status != domain.EpicActive {
		t.Fatalf("epic completed early: %s", mid.Status)
	}

	mustComplete(t, svc, b.ID)
	done, err := svc.EpicRepo().Get(ctx, epic.ID)
	if err != nil {
		t.Fatalf("get epic: %v", err)
	}
	if done.Status != domain.EpicCompleted || done.CompletedDate == nil {
		t.Fatalf("epic not stamped completed: %+v", done)
	}
}

func TestRedeemGiftLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "key task"})
	gift, err := svc.CreateGift(ctx, CreateGiftInput{
		Title: "movie night",
		Condition: domain.UnlockCondition{
			Type:      domain.CondSingleTask,
			TargetIDs: []string{task.ID},
		},
	})
	if err != nil {
		t.Fatalf("create gift: %v", err)
	}

	var ise InvalidStateError
	if _, err := svc.RedeemGift(ctx, gift.ID); !errors.As(err, &ise) {
		t.Fatalf("redeem while locked err=%v, want InvalidStateError", err)
	}

	mustComplete(t, svc, task.ID)
	redeemed, err := svc.RedeemGift(ctx, gift.ID)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if redeemed.Status != domain.GiftRedeemed {
		t.Fatalf("status=%s, want redeemed", redeemed.Status)
	}

	if _, err := svc.RedeemGift(ctx, gift.ID); !errors.As(err, &ise) {
		t.Fatalf("second redeem err=%v, want InvalidStateError", err)
	}
}

func TestArchiveTaskLeavesHistoryIntact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "stale idea"})
	archived, err := svc.ArchiveTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != domain.TaskArchived {
		t.Fatalf("status=%s, want archived", archived.Status)
	}

	var ise InvalidStateError
	if _, err := svc.ArchiveTask(ctx, task.ID); !errors.As(err, &ise) {
		t.Fatalf("double archive err=%v, want InvalidStateError", err)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var ve ValidationError
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "   "}); !errors.As(err, &ve) {
		t.Fatalf("blank title err=%v, want ValidationError", err)
	}

	neg := -5
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "x", XPReward: &neg}); !errors.As(err, &ve) {
		t.Fatalf("negative xp err=%v, want ValidationError", err)
	}

	missing := "ghost-epic"
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "x", EpicID: &missing}); !errors.Is(err, ErrEpicNotFound) {
		t.Fatalf("unknown epic err=%v, want ErrEpicNotFound", err)
	}
}

func TestCreateTaskJoinsEpic(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	epic, err := svc.CreateEpic(ctx, CreateEpicInput{Title: "launch"})
	if err != nil {
		t.Fatalf("create epic: %v", err)
	}
	task := mustCreateTask(t, svc, CreateTaskInput{Title: "ship it", EpicID: &epic.ID})

	stored, err := svc.EpicRepo().Get(ctx, epic.ID)
	if err != nil {
		t.Fatalf("get epic: %v", err)
	}
	if len(stored.TaskIDs) != 1 || stored.TaskIDs[0] != task.ID {
		t.Fatalf("TaskIDs=%v, want [%s]", stored.TaskIDs, task.ID)
	}
}

func TestRoutineStreakAcrossDays(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	routine := mustCreateTask(t, svc, CreateTaskInput{Title: "morning run", IsRoutine: true})
	days := 3
	gift, err := svc.CreateGift(ctx, CreateGiftInput{
		Title: "new running shoes",
		Condition: domain.UnlockCondition{
			Type:       domain.CondStreak,
			TargetIDs:  []string{routine.ID},
			StreakDays: &days,
		},
	})
	if err != nil {
		t.Fatalf("create gift: %v", err)
	}

	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		setClock(svc, day1.AddDate(0, 0, i))
		res := mustComplete(t, svc, routine.ID)

		stored, err := svc.GiftRepo().Get(ctx, gift.ID)
		if err != nil {
			t.Fatalf("get gift: %v", err)
		}
		if i < days-1 {
			if len(res.UnlockedGifts) != 0 {
				t.Fatalf("day %d unlocked %v, want none yet", i+1, res.UnlockedGifts)
			}
			if stored.CurrentStreak != i+1 {
				t.Fatalf("day %d streak=%d, want %d", i+1, stored.CurrentStreak, i+1)
			}
		} else {
			if len(res.UnlockedGifts) != 1 || res.UnlockedGifts[0].ID != gift.ID {
				t.Fatalf("final day UnlockedGifts=%+v, want [%s]", res.UnlockedGifts, gift.ID)
			}
			if stored.Status != domain.GiftUnlocked {
				t.Fatalf("status=%s, want unlocked", stored.Status)
			}
		}
	}

	// The routine was returned to pending each new day, so it is
	// completable again tomorrow.
	setClock(svc, day1.AddDate(0, 0, days))
	if err := svc.ResetRoutineTasks(ctx); err != nil {
		t.Fatalf("reset routines: %v", err)
	}
	fresh, err := svc.TaskRepo().Get(ctx, routine.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if fresh.Status != domain.TaskPending || fresh.CompletedDate != nil {
		t.Fatalf("routine not reset: status=%s completed=%v", fresh.Status, fresh.CompletedDate)
	}
}

func TestRoutineStreakBreaksAfterSkippedDay(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	routine := mustCreateTask(t, svc, CreateTaskInput{Title: "journal", IsRoutine: true})
	days := 5
	gift, err := svc.CreateGift(ctx, CreateGiftInput{
		Title: "fountain pen",
		Condition: domain.UnlockCondition{
			Type:       domain.CondStreak,
			TargetIDs:  []string{routine.ID},
			StreakDays: &days,
		},
	})
	if err != nil {
		t.Fatalf("create gift: %v", err)
	}

	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	setClock(svc, day1)
	mustComplete(t, svc, routine.ID)
	setClock(svc, day1.AddDate(0, 0, 1))
	mustComplete(t, svc, routine.ID)

	stored, err := svc.GiftRepo().Get(ctx, gift.ID)
	if err != nil {
		t.Fatalf("get gift: %v", err)
	}
	if stored.CurrentStreak != 2 {
		t.Fatalf("streak=%d, want 2", stored.CurrentStreak)
	}

	// Skipping a day zeroes the counter before the new completion counts.
	setClock(svc, day1.AddDate(0, 0, 3))
	mustComplete(t, svc, routine.ID)
	stored, err = svc.GiftRepo().Get(ctx, gift.ID)
	if err != nil {
		t.Fatalf("get gift: %v", err)
	}
	if stored.CurrentStreak != 1 {
		t.Fatalf("streak after gap=%d, want 1", stored.CurrentStreak)
	}
	if stored.Status != domain.GiftLocked {
		t.Fatalf("status=%s, want locked", stored.Status)
	}
}

func TestRoutineStreakBreaksWhenSkippedDaySawOnlyAReset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	routine := mustCreateTask(t, svc, CreateTaskInput{Title: "stretch", IsRoutine: true})
	days := 3
	gift, err := svc.CreateGift(ctx, CreateGiftInput{
		Title: "massage voucher",
		Condition: domain.UnlockCondition{
			Type:       domain.CondStreak,
			TargetIDs:  []string{routine.ID},
			StreakDays: &days,
		},
	})
	if err != nil {
		t.Fatalf("create gift: %v", err)
	}

	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	setClock(svc, day1)
	mustComplete(t, svc, routine.ID)

	// The skipped day still sees a routine reset (a list or board load),
	// which clears the task's completion date without a new completion.
	setClock(svc, day1.AddDate(0, 0, 1))
	if err := svc.ResetRoutineTasks(ctx); err != nil {
		t.Fatalf("reset routines: %v", err)
	}

	setClock(svc, day1.AddDate(0, 0, 2))
	mustComplete(t, svc, routine.ID)

	stored, err := svc.GiftRepo().Get(ctx, gift.ID)
	if err != nil {
		t.Fatalf("get gift: %v", err)
	}
	if stored.CurrentStreak != 1 {
		t.Fatalf("streak after skipped day=%d, want 1", stored.CurrentStreak)
	}
	if stored.Status != domain.GiftLocked {
		t.Fatalf("status=%s, want locked", stored.Status)
	}
}

func TestUpdateGiftConditionSwapRestartsStreakProgress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	routine := mustCreateTask(t, svc, CreateTaskInput{Title: "read", IsRoutine: true})
	days := 5
	gift, err := svc.CreateGift(ctx, CreateGiftInput{
		Title: "bookstore run",
		Condition: domain.UnlockCondition{
			Type:       domain.CondStreak,
			TargetIDs:  []string{routine.ID},
			StreakDays: &days,
		},
	})
	if err != nil {
		t.Fatalf("create gift: %v", err)
	}

	mustComplete(t, svc, routine.ID)
	mid, err := svc.GiftRepo().Get(ctx, gift.ID)
	if err != nil {
		t.Fatalf("get gift: %v", err)
	}
	if mid.CurrentStreak != 1 || mid.LastStreakDate == nil {
		t.Fatalf("streak=%d lastDate=%v, want progress recorded", mid.CurrentStreak, mid.LastStreakDate)
	}

	shorter := 3
	updated, err := svc.UpdateGift(ctx, gift.ID, UpdateGiftInput{
		Condition: &domain.UnlockCondition{
			Type:       domain.CondStreak,
			TargetIDs:  []string{routine.ID},
			StreakDays: &shorter,
		},
	})
	if err != nil {
		t.Fatalf("update gift: %v", err)
	}
	if updated.CurrentStreak != 0 || updated.LastStreakDate != nil {
		t.Fatalf("streak=%d lastDate=%v, want progress cleared", updated.CurrentStreak, updated.LastStreakDate)
	}
	if updated.Condition.StreakDays == nil || *updated.Condition.StreakDays != 3 {
		t.Fatalf("condition not replaced: %+v", updated.Condition)
	}
}
