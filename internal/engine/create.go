package engine

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/datefujinari/giftytask/internal/domain"
	"github.com/datefujinari/giftytask/internal/storage"
)

type CreateTaskInput struct {
	Title             string
	Description       *string
	EpicID            *string
	Priority          domain.Priority
	VerificationMode  domain.VerificationMode
	DueDate           *string
	XPReward          *int
	RewardDisplayName *string
	IsRoutine         bool
}

// CreateTask validates the input, persists the task, and when an epic id
// is given appends the new task to that epic's membership list.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, ValidationError{Field: "priority", Reason: "unknown priority " + string(priority)}
	}

	mode := in.VerificationMode
	if mode == "" {
		mode = domain.VerifySelfDeclaration
	}
	if !mode.IsValid() {
		return nil, ValidationError{Field: "verificationMode", Reason: "unknown mode " + string(mode)}
	}

	xp := DefaultTaskXP
	if in.XPReward != nil {
		if *in.XPReward < 0 {
			return nil, ValidationError{Field: "xpReward", Reason: "must not be negative"}
		}
		xp = *in.XPReward
	}

	var due *time.Time
	if in.DueDate != nil {
		d, err := parseDay(*in.DueDate)
		if err != nil {
			return nil, ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"}
		}
		due = &d
	}

	now := s.now()
	task := domain.Task{
		ID:                s.newID(),
		Title:             title,
		Description:       trimOptional(in.Description),
		EpicID:            in.EpicID,
		Status:            domain.TaskPending,
		VerificationMode:  mode,
		Priority:          priority,
		DueDate:           due,
		XPReward:          xp,
		RewardDisplayName: trimOptional(in.RewardDisplayName),
		IsRoutine:         in.IsRoutine,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if in.EpicID == nil {
		if err := s.tasks.Insert(ctx, task); err != nil {
			return nil, err
		}
		return &task, nil
	}

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tasks := storage.NewTaskRepo(tx)
		epics := storage.NewEpicRepo(tx)

		epic, err := epics.Get(ctx, *in.EpicID)
		if err != nil {
			return err
		}
		if epic == nil {
			return ErrEpicNotFound
		}
		if err := tasks.Insert(ctx, task); err != nil {
			return err
		}
		epic.TaskIDs = append(epic.TaskIDs, task.ID)
		epic.UpdatedAt = now
		return epics.Update(ctx, *epic)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

type CreateEpicInput struct {
	Title       string
	Description *string
	GiftID      *string
	TargetDate  *string
}

func (s *Service) CreateEpic(ctx context.Context, in CreateEpicInput) (*domain.Epic, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	var target *time.Time
	if in.TargetDate != nil {
		d, err := parseDay(*in.TargetDate)
		if err != nil {
			return nil, ValidationError{Field: "targetDate", Reason: "expected YYYY-MM-DD"}
		}
		target = &d
	}

	now := s.now()
	epic := domain.Epic{
		ID:          s.newID(),
		Title:       title,
		Description: trimOptional(in.Description),
		Status:      domain.EpicActive,
		GiftID:      in.GiftID,
		TaskIDs:     []string{},
		StartDate:   now,
		TargetDate:  target,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.epics.Insert(ctx, epic); err != nil {
		return nil, err
	}
	return &epic, nil
}

type CreateGiftInput struct {
	Title       string
	Description *string
	Type        domain.GiftType
	Condition   domain.UnlockCondition
	Price       float64
	Currency    string
	RewardURL   *string
}

// CreateGift persists a new locked gift after validating its unlock
// condition. Target ids are accepted without existence checks so gifts
// can reference tasks created later.
func (s *Service) CreateGift(ctx context.Context, in CreateGiftInput) (*domain.Gift, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := in.Condition.Validate(); err != nil {
		return nil, err
	}
	if in.Price < 0 {
		return nil, ValidationError{Field: "price", Reason: "must not be negative"}
	}

	giftType := in.Type
	if giftType == "" {
		giftType = domain.GiftSelfReward
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "JPY"
	}

	now := s.now()
	gift := domain.Gift{
		ID:          s.newID(),
		Title:       title,
		Description: trimOptional(in.Description),
		Status:      domain.GiftLocked,
		Type:        giftType,
		Condition:   in.Condition,
		Price:       in.Price,
		Currency:    currency,
		RewardURL:   trimOptional(in.RewardURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.gifts.Insert(ctx, gift); err != nil {
		return nil, err
	}
	return &gift, nil
}

// RedeemGift marks an unlocked gift as redeemed. Locked and already
// redeemed gifts are rejected; status never moves backwards.
func (s *Service) RedeemGift(ctx context.Context, giftID string) (*domain.Gift, error) {
	gift, err := s.gifts.Get(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if gift == nil {
		return nil, ErrGiftNotFound
	}
	switch gift.Status {
	case domain.GiftUnlocked:
	case domain.GiftLocked:
		return nil, InvalidStateError{Op: "redeem", Reason: "gift is still locked"}
	default:
		return nil, InvalidStateError{Op: "redeem", Reason: "gift was already redeemed"}
	}

	gift.Status = domain.GiftRedeemed
	gift.UpdatedAt = s.now()
	if err := s.gifts.Update(ctx, *gift); err != nil {
		return nil, err
	}
	return gift, nil
}

// ArchiveTask hides a task from active lists without deleting it. The
// task keeps contributing to history and epic membership.
func (s *Service) ArchiveTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.Status == domain.TaskArchived {
		return nil, InvalidStateError{Op: "archive", Reason: "task is already archived"}
	}

	task.Status = domain.TaskArchived
	task.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, *task); err != nil {
		return nil, err
	}
	return task, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local)
}
