package engine

import (
	"context"

	"github.com/datefujinari/giftytask/internal/domain"
)

type UpdateTaskInput struct {
	Title             *string
	Description       *string
	Priority          *domain.Priority
	DueDate           *string
	XPReward          *int
	RewardDisplayName *string
}

// UpdateTask applies partial edits to a pending or in-progress task.
// Completed and archived tasks are frozen history and reject edits.
func (s *Service) UpdateTask(ctx context.Context, taskID string, in UpdateTaskInput) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.Status == domain.TaskCompleted || task.Status == domain.TaskArchived {
		return nil, InvalidStateError{Op: "update", Reason: "task is " + string(task.Status)}
	}

	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = trimOptional(in.Description)
	}
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return nil, ValidationError{Field: "priority", Reason: "unknown priority " + string(*in.Priority)}
		}
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			task.DueDate = nil
		} else {
			d, err := parseDay(*in.DueDate)
			if err != nil {
				return nil, ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"}
			}
			task.DueDate = &d
		}
	}
	if in.XPReward != nil {
		if *in.XPReward < 0 {
			return nil, ValidationError{Field: "xpReward", Reason: "must not be negative"}
		}
		task.XPReward = *in.XPReward
	}
	if in.RewardDisplayName != nil {
		task.RewardDisplayName = trimOptional(in.RewardDisplayName)
	}

	task.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, *task); err != nil {
		return nil, err
	}
	return task, nil
}

// LinkEpicGift attaches a gift to an epic so finishing the epic points at
// a concrete reward. The gift must exist; the unlock condition itself is
// authored on the gift, not here.
func (s *Service) LinkEpicGift(ctx context.Context, epicID, giftID string) (*domain.Epic, error) {
	epic, err := s.epics.Get(ctx, epicID)
	if err != nil {
		return nil, err
	}
	if epic == nil {
		return nil, ErrEpicNotFound
	}
	gift, err := s.gifts.Get(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if gift == nil {
		return nil, ErrGiftNotFound
	}

	epic.GiftID = &gift.ID
	epic.UpdatedAt = s.now()
	if err := s.epics.Update(ctx, *epic); err != nil {
		return nil, err
	}
	return epic, nil
}

type UpdateGiftInput struct {
	Title       *string
	Description *string
	Condition   *domain.UnlockCondition
	Price       *float64
	RewardURL   *string
}

// UpdateGift edits a locked gift, including swapping its unlock
// condition. Unlocked and redeemed gifts are immutable so an earned
// reward can never be re-gated.
func (s *Service) UpdateGift(ctx context.Context, giftID string, in UpdateGiftInput) (*domain.Gift, error) {
	gift, err := s.gifts.Get(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if gift == nil {
		return nil, ErrGiftNotFound
	}
	if gift.Status != domain.GiftLocked {
		return nil, InvalidStateError{Op: "update", Reason: "gift is " + string(gift.Status)}
	}

	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		gift.Title = title
	}
	if in.Description != nil {
		gift.Description = trimOptional(in.Description)
	}
	if in.Condition != nil {
		if err := in.Condition.Validate(); err != nil {
			return nil, err
		}
		gift.Condition = *in.Condition
		// A new condition restarts any streak progress already made.
		gift.CurrentStreak = 0
		gift.LastStreakDate = nil
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, ValidationError{Field: "price", Reason: "must not be negative"}
		}
		gift.Price = *in.Price
	}
	if in.RewardURL != nil {
		gift.RewardURL = trimOptional(in.RewardURL)
	}

	gift.UpdatedAt = s.now()
	if err := s.gifts.Update(ctx, *gift); err != nil {
		return nil, err
	}
	return gift, nil
}
