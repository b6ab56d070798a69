package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/datefujinari/giftytask/internal/domain"
)

type EpicRepo struct {
	db DBTX
}

func NewEpicRepo(db DBTX) *EpicRepo {
	return &EpicRepo{db: db}
}

const epicColumns = `id, title, description, status, gift_id, task_ids, start_date, target_date,
	completed_date, created_at, updated_at`

func (r *EpicRepo) Insert(ctx context.Context, e domain.Epic) error {
	taskIDs, err := json.Marshal(e.TaskIDs)
	if err != nil {
		return fmt.Errorf("marshal task ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO epics (`+epicColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Title, e.Description, string(e.Status), e.GiftID, string(taskIDs), e.StartDate,
		e.TargetDate, e.CompletedDate, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("epic insert: %w", err)
	}
	return nil
}

func (r *EpicRepo) Get(ctx context.Context, id string) (*domain.Epic, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+epicColumns+` FROM epics WHERE id = ?`, id)
	return scanEpic(row)
}

func (r *EpicRepo) ListAll(ctx context.Context) ([]domain.Epic, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+epicColumns+` FROM epics ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("epic list: %w", err)
	}
	defer rows.Close()

	var out []domain.Epic
	for rows.Next() {
		e, err := scanEpic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("epic rows: %w", err)
	}
	return out, nil
}

func (r *EpicRepo) Update(ctx context.Context, e domain.Epic) error {
	taskIDs, err := json.Marshal(e.TaskIDs)
	if err != nil {
		return fmt.Errorf("marshal task ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE epics
		SET title = ?, description = ?, status = ?, gift_id = ?, task_ids = ?, start_date = ?,
			target_date = ?, completed_date = ?, updated_at = ?
		WHERE id = ?
	`, e.Title, e.Description, string(e.Status), e.GiftID, string(taskIDs), e.StartDate,
		e.TargetDate, e.CompletedDate, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("epic update: %w", err)
	}
	return nil
}

func scanEpic(row scanner) (*domain.Epic, error) {
	var (
		e             domain.Epic
		status        string
		description   sql.NullString
		giftID        sql.NullString
		taskIDsRaw    sql.NullString
		targetDate    sql.NullTime
		completedDate sql.NullTime
	)

	if err := row.Scan(&e.ID, &e.Title, &description, &status, &giftID, &taskIDsRaw, &e.StartDate,
		&targetDate, &completedDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("epic scan: %w", err)
	}

	if taskIDsRaw.Valid && taskIDsRaw.String != "" {
		if err := json.Unmarshal([]byte(taskIDsRaw.String), &e.TaskIDs); err != nil {
			return nil, fmt.Errorf("unmarshal task ids: %w", err)
		}
	}

	e.Status = domain.EpicStatus(status)
	e.Description = nullString(description)
	e.GiftID = nullString(giftID)
	e.TargetDate = nullTime(targetDate)
	e.CompletedDate = nullTime(completedDate)
	return &e, nil
}
