package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/datefujinari/giftytask/internal/domain"
)

type GiftRepo struct {
	db DBTX
}

func NewGiftRepo(db DBTX) *GiftRepo {
	return &GiftRepo{db: db}
}

const giftColumns = `id, title, description, status, type, unlock_condition, price, currency,
	reward_url, gift_url, current_streak, last_streak_date, unlocked_at, created_at, updated_at`

func (r *GiftRepo) Insert(ctx context.Context, g domain.Gift) error {
	cond, err := json.Marshal(g.Condition)
	if err != nil {
		return fmt.Errorf("marshal condition: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO gifts (`+giftColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.Title, g.Description, string(g.Status), string(g.Type), string(cond), g.Price, g.Currency,
		g.RewardURL, g.GiftURL, g.CurrentStreak, g.LastStreakDate, g.UnlockedAt, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("gift insert: %w", err)
	}
	return nil
}

func (r *GiftRepo) Get(ctx context.Context, id string) (*domain.Gift, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+giftColumns+` FROM gifts WHERE id = ?`, id)
	return scanGift(row)
}

func (r *GiftRepo) ListAll(ctx context.Context) ([]domain.Gift, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+giftColumns+` FROM gifts ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("gift list: %w", err)
	}
	defer rows.Close()

	var out []domain.Gift
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gift rows: %w", err)
	}
	return out, nil
}

func (r *GiftRepo) ListByStatus(ctx context.Context, status domain.GiftStatus) ([]domain.Gift, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+giftColumns+` FROM gifts WHERE status = ? ORDER BY created_at ASC, id ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("gift list by status: %w", err)
	}
	defer rows.Close()

	var out []domain.Gift
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gift rows: %w", err)
	}
	return out, nil
}

func (r *GiftRepo) Update(ctx context.Context, g domain.Gift) error {
	cond, err := json.Marshal(g.Condition)
	if err != nil {
		return fmt.Errorf("marshal condition: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE gifts
		SET title = ?, description = ?, status = ?, type = ?, unlock_condition = ?, price = ?, currency = ?,
			reward_url = ?, gift_url = ?, current_streak = ?, last_streak_date = ?, unlocked_at = ?, updated_at = ?
		WHERE id = ?
	`, g.Title, g.Description, string(g.Status), string(g.Type), string(cond), g.Price, g.Currency,
		g.RewardURL, g.GiftURL, g.CurrentStreak, g.LastStreakDate, g.UnlockedAt, g.UpdatedAt, g.ID)
	if err != nil {
		return fmt.Errorf("gift update: %w", err)
	}
	return nil
}

func scanGift(row scanner) (*domain.Gift, error) {
	var (
		g           domain.Gift
		status      string
		giftType    string
		condRaw     string
		description sql.NullString
		rewardURL   sql.NullString
		giftURL     sql.NullString
		lastStreak  sql.NullTime
		unlockedAt  sql.NullTime
	)

	if err := row.Scan(
		&g.ID, &g.Title, &description, &status, &giftType, &condRaw, &g.Price, &g.Currency,
		&rewardURL, &giftURL, &g.CurrentStreak, &lastStreak, &unlockedAt, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("gift scan: %w", err)
	}

	// The codec accepts both the canonical and the legacy condition shape.
	if err := json.Unmarshal([]byte(condRaw), &g.Condition); err != nil {
		return nil, fmt.Errorf("unmarshal condition: %w", err)
	}

	g.Status = domain.GiftStatus(status)
	g.Type = domain.GiftType(giftType)
	g.Description = nullString(description)
	g.RewardURL = nullString(rewardURL)
	g.GiftURL = nullString(giftURL)
	g.LastStreakDate = nullTime(lastStreak)
	g.UnlockedAt = nullTime(unlockedAt)
	return &g, nil
}
