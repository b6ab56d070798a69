package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestGiftRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGiftRepo(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	days := 7
	url := "https://example.com/reward"
	lastDay := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	gift := domain.Gift{
		ID:     "g1",
		Title:  "spa day",
		Status: domain.GiftLocked,
		Type:   domain.GiftSelfReward,
		Condition: domain.UnlockCondition{
			Type:       domain.CondStreak,
			TargetIDs:  []string{"run"},
			StreakDays: &days,
		},
		Price:          3000,
		Currency:       "JPY",
		RewardURL:      &url,
		CurrentStreak:  2,
		LastStreakDate: &lastDay,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.Insert(ctx, gift); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("gift not found after insert")
	}
	if got.Condition.Type != domain.CondStreak || len(got.Condition.TargetIDs) != 1 || got.Condition.TargetIDs[0] != "run" {
		t.Fatalf("condition mangled: %+v", got.Condition)
	}
	if got.Condition.StreakDays == nil || *got.Condition.StreakDays != 7 {
		t.Fatalf("streak days mangled: %+v", got.Condition)
	}
	if got.RewardURL == nil || *got.RewardURL != url {
		t.Fatalf("reward url mangled: %v", got.RewardURL)
	}
	if got.CurrentStreak != 2 {
		t.Fatalf("current streak=%d, want 2", got.CurrentStreak)
	}
	if got.LastStreakDate == nil || !got.LastStreakDate.Equal(lastDay) {
		t.Fatalf("last streak date=%v, want %v", got.LastStreakDate, lastDay)
	}
}

// Rows persisted by older builds carry the legacy condition shape with
// separate taskId / epicId fields and the old kind names. The repo must
// read them as canonical conditions.
func TestGiftReadsLegacyConditionRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO gifts (id, title, status, type, unlock_condition, price, currency, created_at, updated_at)
		VALUES ('legacy', 'old gift', 'locked', 'self_reward',
			'{"conditionType":"task_completion","taskId":"t-42"}',
			0, 'JPY', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	got, err := NewGiftRepo(db).Get(ctx, "legacy")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Condition.Type != domain.CondSingleTask {
		t.Fatalf("type=%s, want single_task", got.Condition.Type)
	}
	if len(got.Condition.TargetIDs) != 1 || got.Condition.TargetIDs[0] != "t-42" {
		t.Fatalf("targets=%v, want [t-42]", got.Condition.TargetIDs)
	}
}

func TestGiftGetMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	got, err := NewGiftRepo(db).Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewTaskRepo(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 3)
	desc := "with details"
	task := domain.Task{
		ID:               "t1",
		Title:            "write tests",
		Description:      &desc,
		Status:           domain.TaskPending,
		VerificationMode: domain.VerifyPhotoEvidence,
		Priority:         domain.PriorityHigh,
		DueDate:          &due,
		XPReward:         25,
		IsRoutine:        true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repo.Insert(ctx, task); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Priority != domain.PriorityHigh || got.VerificationMode != domain.VerifyPhotoEvidence {
		t.Fatalf("enums mangled: %+v", got)
	}
	if !got.IsRoutine {
		t.Fatal("is_routine lost")
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date mangled: %v", got.DueDate)
	}

	got.Status = domain.TaskCompleted
	got.CompletedDate = &now
	if err := repo.Update(ctx, *got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := repo.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if again.Status != domain.TaskCompleted || again.CompletedDate == nil {
		t.Fatalf("update lost: %+v", again)
	}
}

func TestActivityUpsertReplacesDayRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepo(db)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rec := domain.ActivityRecord{
		ID:                  "a1",
		UserID:              MainUserID,
		Date:                day,
		CompletedTasksCount: 1,
		TotalTasksCount:     4,
		XPGained:            10,
	}
	rec.RecalculateRate()
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	rec.CompletedTasksCount = 2
	rec.XPGained = 20
	rec.RecalculateRate()
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.GetByDay(ctx, MainUserID, day)
	if err != nil {
		t.Fatalf("get by day: %v", err)
	}
	if got == nil || got.CompletedTasksCount != 2 || got.XPGained != 20 {
		t.Fatalf("upsert did not replace: %+v", got)
	}

	records, err := repo.ListByUser(ctx, MainUserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d rows for one day, want 1", len(records))
	}
}

func TestUserGetOrCreateMain(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)

	u, err := repo.GetOrCreateMain(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID != MainUserID || u.Level != 1 {
		t.Fatalf("unexpected new user: %+v", u)
	}

	u.TotalXP = 250
	u.Level = 3
	u.UnlockedBadges = []string{"first_task"}
	if err := repo.Update(ctx, *u); err != nil {
		t.Fatalf("update: %v", err)
	}

	again, err := repo.GetOrCreateMain(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.TotalXP != 250 || again.Level != 3 {
		t.Fatalf("reload lost fields: %+v", again)
	}
	if len(again.UnlockedBadges) != 1 || again.UnlockedBadges[0] != "first_task" {
		t.Fatalf("badges mangled: %v", again.UnlockedBadges)
	}
}

func TestStreakUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewStreakRepo(db)

	// Missing row reads as zero state.
	s, err := repo.Get(ctx, MainUserID)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if s.CurrentStreak != 0 || s.LastActivityDate != nil {
		t.Fatalf("zero state expected, got %+v", s)
	}

	last := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s = domain.StreakState{CurrentStreak: 4, LongestStreak: 9, LastActivityDate: &last}
	if err := repo.Upsert(ctx, MainUserID, s); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Get(ctx, MainUserID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentStreak != 4 || got.LongestStreak != 9 {
		t.Fatalf("streak mangled: %+v", got)
	}
	if got.LastActivityDate == nil || !got.LastActivityDate.Equal(last) {
		t.Fatalf("last activity mangled: %v", got.LastActivityDate)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		repo := NewTaskRepo(tx)
		task := domain.Task{ID: "doomed", Title: "never lands", Status: domain.TaskPending,
			VerificationMode: domain.VerifySelfDeclaration, Priority: domain.PriorityMedium,
			XPReward: 10, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := repo.Insert(ctx, task); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}

	got, err := NewTaskRepo(db).Get(ctx, "doomed")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("row survived a rolled back transaction")
	}
}
