package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
)

// MainUserID keys the single local profile.
const MainUserID = "main_user"

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, display_name, level, xp, total_xp, current_theme, unlocked_themes, unlocked_badges,
			created_at, updated_at
		FROM users WHERE id = ?
	`, id)

	var (
		u      domain.User
		themes sql.NullString
		badges sql.NullString
	)
	if err := row.Scan(&u.ID, &u.DisplayName, &u.Level, &u.XP, &u.TotalXP, &u.CurrentTheme,
		&themes, &badges, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}

	if themes.Valid && themes.String != "" {
		if err := json.Unmarshal([]byte(themes.String), &u.UnlockedThemes); err != nil {
			return nil, fmt.Errorf("unmarshal themes: %w", err)
		}
	}
	if badges.Valid && badges.String != "" {
		if err := json.Unmarshal([]byte(badges.String), &u.UnlockedBadges); err != nil {
			return nil, fmt.Errorf("unmarshal badges: %w", err)
		}
	}
	return &u, nil
}

// GetOrCreateMain returns the local profile, creating it on first use.
func (r *UserRepo) GetOrCreateMain(ctx context.Context) (*domain.User, error) {
	u, err := r.Get(ctx, MainUserID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	now := time.Now().UTC()
	fresh := domain.User{
		ID:             MainUserID,
		DisplayName:    "Adventurer",
		Level:          1,
		CurrentTheme:   "default",
		UnlockedThemes: []string{"default"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.insert(ctx, fresh); err != nil {
		return nil, err
	}
	return r.Get(ctx, MainUserID)
}

func (r *UserRepo) insert(ctx context.Context, u domain.User) error {
	themes, badges, err := marshalUserSets(u)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, level, xp, total_xp, current_theme, unlocked_themes, unlocked_badges, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.DisplayName, u.Level, u.XP, u.TotalXP, u.CurrentTheme, themes, badges, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u domain.User) error {
	themes, badges, err := marshalUserSets(u)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE users
		SET display_name = ?, level = ?, xp = ?, total_xp = ?, current_theme = ?,
			unlocked_themes = ?, unlocked_badges = ?, updated_at = ?
		WHERE id = ?
	`, u.DisplayName, u.Level, u.XP, u.TotalXP, u.CurrentTheme, themes, badges, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func marshalUserSets(u domain.User) (string, string, error) {
	themes, err := json.Marshal(u.UnlockedThemes)
	if err != nil {
		return "", "", fmt.Errorf("marshal themes: %w", err)
	}
	badges, err := json.Marshal(u.UnlockedBadges)
	if err != nil {
		return "", "", fmt.Errorf("marshal badges: %w", err)
	}
	return string(themes), string(badges), nil
}
