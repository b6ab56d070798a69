package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/datefujinari/giftytask/internal/domain"
)

type StreakRepo struct {
	db DBTX
}

func NewStreakRepo(db DBTX) *StreakRepo {
	return &StreakRepo{db: db}
}

// Get returns the user's streak state, a zero state when none is stored.
func (r *StreakRepo) Get(ctx context.Context, userID string) (domain.StreakState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT current_streak, longest_streak, last_activity_date
		FROM streaks WHERE user_id = ?
	`, userID)

	var (
		s    domain.StreakState
		last sql.NullTime
	)
	if err := row.Scan(&s.CurrentStreak, &s.LongestStreak, &last); err != nil {
		if err == sql.ErrNoRows {
			return domain.StreakState{}, nil
		}
		return domain.StreakState{}, fmt.Errorf("streak get: %w", err)
	}
	s.LastActivityDate = nullTime(last)
	return s, nil
}

func (r *StreakRepo) Upsert(ctx context.Context, userID string, s domain.StreakState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO streaks (user_id, current_streak, longest_streak, last_activity_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_activity_date = excluded.last_activity_date
	`, userID, s.CurrentStreak, s.LongestStreak, s.LastActivityDate)
	if err != nil {
		return fmt.Errorf("streak upsert: %w", err)
	}
	return nil
}
