package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

type TaskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, title, description, epic_id, status, verification_mode, priority,
	due_date, completed_date, photo_evidence_url, xp_reward, reward_display_name, is_routine,
	created_at, updated_at`

func (r *TaskRepo) Insert(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.EpicID, string(t.Status), string(t.VerificationMode), string(t.Priority),
		t.DueDate, t.CompletedDate, t.PhotoEvidenceURL, t.XPReward, t.RewardDisplayName, boolToInt(t.IsRoutine),
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("task insert: %w", err)
	}
	return nil
}

func (r *TaskRepo) Get(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

func (r *TaskRepo) ListAll(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

func (r *TaskRepo) ListByEpic(ctx context.Context, epicID string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE epic_id = ? ORDER BY created_at ASC, id ASC`, epicID)
	if err != nil {
		return nil, fmt.Errorf("task list by epic: %w", err)
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list by epic rows: %w", err)
	}
	return out, nil
}

func (r *TaskRepo) Update(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, epic_id = ?, status = ?, verification_mode = ?, priority = ?,
			due_date = ?, completed_date = ?, photo_evidence_url = ?, xp_reward = ?,
			reward_display_name = ?, is_routine = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Description, t.EpicID, string(t.Status), string(t.VerificationMode), string(t.Priority),
		t.DueDate, t.CompletedDate, t.PhotoEvidenceURL, t.XPReward,
		t.RewardDisplayName, boolToInt(t.IsRoutine), t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("task update: %w", err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		t                 domain.Task
		status            string
		verification      string
		priority          string
		description       sql.NullString
		epicID            sql.NullString
		dueDate           sql.NullTime
		completedDate     sql.NullTime
		photoEvidenceURL  sql.NullString
		rewardDisplayName sql.NullString
		isRoutine         int
	)

	if err := row.Scan(
		&t.ID, &t.Title, &description, &epicID, &status, &verification, &priority,
		&dueDate, &completedDate, &photoEvidenceURL, &t.XPReward, &rewardDisplayName, &isRoutine,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}

	t.Status = domain.TaskStatus(status)
	t.VerificationMode = domain.VerificationMode(verification)
	t.Priority = domain.Priority(priority)
	t.Description = nullString(description)
	t.EpicID = nullString(epicID)
	t.DueDate = nullTime(dueDate)
	t.CompletedDate = nullTime(completedDate)
	t.PhotoEvidenceURL = nullString(photoEvidenceURL)
	t.RewardDisplayName = nullString(rewardDisplayName)
	t.IsRoutine = isRoutine != 0
	return &t, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
