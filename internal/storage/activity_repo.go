package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

type ActivityRepo struct {
	db DBTX
}

func NewActivityRepo(db DBTX) *ActivityRepo {
	return &ActivityRepo{db: db}
}

const activityColumns = `id, user_id, date, completed_tasks_count, total_tasks_count, xp_gained, completion_rate`

// GetByDay returns the record for the user's calendar day, nil when the
// day has no activity yet.
func (r *ActivityRepo) GetByDay(ctx context.Context, userID string, day time.Time) (*domain.ActivityRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+activityColumns+` FROM activity WHERE user_id = ? AND date = ?
	`, userID, day)
	return scanActivity(row)
}

func (r *ActivityRepo) ListByUser(ctx context.Context, userID string) ([]domain.ActivityRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+activityColumns+` FROM activity WHERE user_id = ? ORDER BY date ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("activity list: %w", err)
	}
	defer rows.Close()

	var out []domain.ActivityRecord
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activity rows: %w", err)
	}
	return out, nil
}

// Upsert writes the day's record, replacing the counters on conflict.
// Records are only ever grown within a day and never deleted.
func (r *ActivityRepo) Upsert(ctx context.Context, a domain.ActivityRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity (`+activityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			completed_tasks_count = excluded.completed_tasks_count,
			total_tasks_count = excluded.total_tasks_count,
			xp_gained = excluded.xp_gained,
			completion_rate = excluded.completion_rate
	`, a.ID, a.UserID, a.Date, a.CompletedTasksCount, a.TotalTasksCount, a.XPGained, a.CompletionRate)
	if err != nil {
		return fmt.Errorf("activity upsert: %w", err)
	}
	return nil
}

func scanActivity(row scanner) (*domain.ActivityRecord, error) {
	var a domain.ActivityRecord
	if err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.CompletedTasksCount, &a.TotalTasksCount,
		&a.XPGained, &a.CompletionRate); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("activity scan: %w", err)
	}
	return &a, nil
}
