package domain

import (
	"encoding/json"
	"fmt"
)

type ConditionType string

const (
	CondEpicCompletion ConditionType = "epic_completion"
	CondSingleTask     ConditionType = "single_task"
	CondMultipleTasks  ConditionType = "multiple_tasks"
	CondStreak         ConditionType = "streak"
	CondXPThreshold    ConditionType = "xp_threshold"
)

// Legacy kind names that older persisted gifts may still carry.
const (
	legacyTaskCompletion          = "task_completion"
	legacyMultipleTasksCompletion = "multiple_tasks_completion"
	legacyStreakDays              = "streak_days"
)

func (t ConditionType) IsValid() bool {
	switch t {
	case CondEpicCompletion, CondSingleTask, CondMultipleTasks, CondStreak, CondXPThreshold:
		return true
	default:
		return false
	}
}

// NormalizeConditionType maps legacy kind aliases onto canonical kinds.
// Unknown kinds pass through unchanged so validation can reject them.
func NormalizeConditionType(raw string) ConditionType {
	switch raw {
	case legacyTaskCompletion:
		return CondSingleTask
	case legacyMultipleTasksCompletion:
		return CondMultipleTasks
	case legacyStreakDays:
		return CondStreak
	default:
		return ConditionType(raw)
	}
}

// MaxMultipleTaskTargets caps multiple_tasks target lists.
const MaxMultipleTaskTargets = 10

// UnlockCondition is the canonical tagged variant over condition kinds.
// TargetIDs semantics depend on the kind: the epic id for epic_completion,
// the task id for single_task and streak, the full task list for
// multiple_tasks, and empty for xp_threshold.
type UnlockCondition struct {
	Type        ConditionType `json:"conditionType"`
	TargetIDs   []string      `json:"targetIds"`
	StreakDays  *int          `json:"streakDays,omitempty"`
	XPThreshold *int          `json:"xpThreshold,omitempty"`
}

// conditionWire covers both historical schema shapes: the canonical one
// (conditionType + targetIds) and the legacy one with separate epicId /
// taskId / taskIds fields.
type conditionWire struct {
	ConditionType string   `json:"conditionType"`
	TargetIDs     []string `json:"targetIds,omitempty"`
	EpicID        *string  `json:"epicId,omitempty"`
	TaskID        *string  `json:"taskId,omitempty"`
	TaskIDs       []string `json:"taskIds,omitempty"`
	StreakDays    *int     `json:"streakDays,omitempty"`
	XPThreshold   *int     `json:"xpThreshold,omitempty"`
}

// UnmarshalJSON decodes either schema shape into the canonical form.
// When both shapes carry targets, the canonical targetIds list wins.
func (c *UnlockCondition) UnmarshalJSON(data []byte) error {
	var w conditionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode unlock condition: %w", err)
	}

	kind := NormalizeConditionType(w.ConditionType)
	if !kind.IsValid() {
		return fmt.Errorf("unknown condition type: %q", w.ConditionType)
	}

	targets := w.TargetIDs
	if len(targets) == 0 {
		switch {
		case len(w.TaskIDs) > 0:
			targets = w.TaskIDs
		case w.TaskID != nil && *w.TaskID != "":
			targets = []string{*w.TaskID}
		case w.EpicID != nil && *w.EpicID != "":
			targets = []string{*w.EpicID}
		}
	}

	c.Type = kind
	c.TargetIDs = targets
	c.StreakDays = w.StreakDays
	c.XPThreshold = w.XPThreshold
	return nil
}

// MarshalJSON always emits the canonical shape.
func (c UnlockCondition) MarshalJSON() ([]byte, error) {
	targets := c.TargetIDs
	if targets == nil {
		targets = []string{}
	}
	return json.Marshal(conditionWire{
		ConditionType: string(c.Type),
		TargetIDs:     targets,
		StreakDays:    c.StreakDays,
		XPThreshold:   c.XPThreshold,
	})
}

// Validate checks the kind-specific target and threshold requirements.
func (c UnlockCondition) Validate() error {
	switch c.Type {
	case CondEpicCompletion:
		if len(c.TargetIDs) != 1 {
			return fmt.Errorf("epic_completion requires exactly one epic id, got %d", len(c.TargetIDs))
		}
	case CondSingleTask:
		if len(c.TargetIDs) != 1 {
			return fmt.Errorf("single_task requires exactly one task id, got %d", len(c.TargetIDs))
		}
	case CondMultipleTasks:
		if len(c.TargetIDs) == 0 {
			return fmt.Errorf("multiple_tasks requires at least one task id")
		}
		if len(c.TargetIDs) > MaxMultipleTaskTargets {
			return fmt.Errorf("multiple_tasks supports at most %d task ids, got %d", MaxMultipleTaskTargets, len(c.TargetIDs))
		}
	case CondStreak:
		if len(c.TargetIDs) != 1 {
			return fmt.Errorf("streak requires exactly one routine task id, got %d", len(c.TargetIDs))
		}
		if c.StreakDays == nil || *c.StreakDays < 1 {
			return fmt.Errorf("streak requires a day threshold >= 1")
		}
	case CondXPThreshold:
		if c.XPThreshold == nil || *c.XPThreshold < 1 {
			return fmt.Errorf("xp_threshold requires a threshold >= 1")
		}
	default:
		return fmt.Errorf("unknown condition type: %q", c.Type)
	}
	return nil
}
