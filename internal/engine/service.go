package engine

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/datefujinari/giftytask/internal/domain"
	"github.com/datefujinari/giftytask/internal/storage"
)

// Config carries the tunables every core call depends on. Zero values are
// replaced with the defaults the original app shipped with.
type Config struct {
	DailyGoal         int
	ActiveDaysWindow  int
	HeatmapWindowDays int
	DefaultRewardURL  string
}

const (
	DefaultDailyGoal        = 5
	DefaultActiveDaysWindow = 20
)

func (c Config) withDefaults() Config {
	if c.DailyGoal <= 0 {
		c.DailyGoal = DefaultDailyGoal
	}
	if c.ActiveDaysWindow <= 0 {
		c.ActiveDaysWindow = DefaultActiveDaysWindow
	}
	if c.HeatmapWindowDays <= 0 {
		c.HeatmapWindowDays = DefaultHeatmapWindowDays
	}
	if c.DefaultRewardURL == "" {
		c.DefaultRewardURL = DefaultRewardURL
	}
	return c
}

// Service owns the serialized write path for one local user: every
// completion event runs its whole cascade before the next one starts.
// The clock is injected so day-boundary rules stay testable.
type Service struct {
	db  *sql.DB
	cfg Config

	users    *storage.UserRepo
	tasks    *storage.TaskRepo
	epics    *storage.EpicRepo
	gifts    *storage.GiftRepo
	activity *storage.ActivityRepo
	streaks  *storage.StreakRepo

	Now   func() time.Time
	NewID func() string
}

func NewService(db *sql.DB, cfg Config) *Service {
	return &Service{
		db:       db,
		cfg:      cfg.withDefaults(),
		users:    storage.NewUserRepo(db),
		tasks:    storage.NewTaskRepo(db),
		epics:    storage.NewEpicRepo(db),
		gifts:    storage.NewGiftRepo(db),
		activity: storage.NewActivityRepo(db),
		streaks:  storage.NewStreakRepo(db),
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

func (s *Service) Config() Config                 { return s.cfg }
func (s *Service) UserRepo() *storage.UserRepo    { return s.users }
func (s *Service) TaskRepo() *storage.TaskRepo    { return s.tasks }
func (s *Service) EpicRepo() *storage.EpicRepo    { return s.epics }
func (s *Service) GiftRepo() *storage.GiftRepo    { return s.gifts }
func (s *Service) ActivityRepo() *storage.ActivityRepo { return s.activity }
func (s *Service) StreakRepo() *storage.StreakRepo     { return s.streaks }

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return t, nil
}

// User returns the local profile with its level kept consistent with the
// stored lifetime XP.
func (s *Service) User(ctx context.Context) (*domain.User, error) {
	u, err := s.users.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}
	computed := LevelForTotalXP(u.TotalXP)
	if u.Level != computed {
		u.Level = computed
		u.UpdatedAt = s.now()
		if err := s.users.Update(ctx, *u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Streak returns the user's day-streak state.
func (s *Service) Streak(ctx context.Context) (domain.StreakState, error) {
	return s.streaks.Get(ctx, storage.MainUserID)
}

// ActivityRing computes today's three ring values from stored state.
func (s *Service) ActivityRing(ctx context.Context) (domain.ActivityRing, error) {
	records, err := s.activity.ListByUser(ctx, storage.MainUserID)
	if err != nil {
		return domain.ActivityRing{}, err
	}
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return domain.ActivityRing{}, err
	}
	epics, err := s.epics.ListAll(ctx)
	if err != nil {
		return domain.ActivityRing{}, err
	}

	today := s.now()
	completedToday := 0
	if rec, err := s.activity.GetByDay(ctx, storage.MainUserID, StartOfDay(today)); err != nil {
		return domain.ActivityRing{}, err
	} else if rec != nil {
		completedToday = rec.CompletedTasksCount
	}

	active := ActiveDays(records, s.cfg.ActiveDaysWindow, today)
	avg := AverageEpicProgress(epics, tasks)
	return ComputeActivityRing(completedToday, s.cfg.DailyGoal, avg, active, s.cfg.ActiveDaysWindow), nil
}

// Heatmap projects the stored activity onto the trailing calendar grid.
func (s *Service) Heatmap(ctx context.Context) ([]domain.HeatmapCell, error) {
	records, err := s.activity.ListByUser(ctx, storage.MainUserID)
	if err != nil {
		return nil, err
	}
	return ComputeHeatmap(records, s.cfg.HeatmapWindowDays, s.cfg.DailyGoal, s.now()), nil
}

// Badges returns the badge list with earned status for the current state.
func (s *Service) Badges(ctx context.Context) ([]Badge, error) {
	u, err := s.User(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	epics, err := s.epics.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	gifts, err := s.gifts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	streak, err := s.streaks.Get(ctx, storage.MainUserID)
	if err != nil {
		return nil, err
	}
	return NewBadgeChecker(*u, tasks, epics, gifts, streak).Badges(), nil
}
