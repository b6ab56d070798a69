package domain

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskArchived   TaskStatus = "archived"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskArchived:
		return true
	default:
		return false
	}
}

type VerificationMode string

const (
	VerifySelfDeclaration VerificationMode = "self_declaration"
	VerifyPhotoEvidence   VerificationMode = "photo_evidence"
)

func (m VerificationMode) IsValid() bool {
	return m == VerifySelfDeclaration || m == VerifyPhotoEvidence
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Rank orders priorities for list sorting (urgent first).
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

type Task struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Description       *string          `json:"description,omitempty"`
	EpicID            *string          `json:"epicId,omitempty"`
	Status            TaskStatus       `json:"status"`
	VerificationMode  VerificationMode `json:"verificationMode"`
	Priority          Priority         `json:"priority"`
	DueDate           *time.Time       `json:"dueDate,omitempty"`
	CompletedDate     *time.Time       `json:"completedDate,omitempty"`
	PhotoEvidenceURL  *string          `json:"photoEvidenceURL,omitempty"`
	XPReward          int              `json:"xpReward"`
	RewardDisplayName *string          `json:"rewardDisplayName,omitempty"`
	IsRoutine         bool             `json:"isRoutine"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type EpicStatus string

const (
	EpicActive    EpicStatus = "active"
	EpicPaused    EpicStatus = "paused"
	EpicCompleted EpicStatus = "completed"
	EpicArchived  EpicStatus = "archived"
)

func (s EpicStatus) IsValid() bool {
	switch s {
	case EpicActive, EpicPaused, EpicCompleted, EpicArchived:
		return true
	default:
		return false
	}
}

// Epic references its child tasks by id only. Dangling ids are tolerated
// and filtered at read time; deleting a task never cascades to the epic.
type Epic struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	Status        EpicStatus `json:"status"`
	GiftID        *string    `json:"giftId,omitempty"`
	TaskIDs       []string   `json:"taskIds"`
	StartDate     time.Time  `json:"startDate"`
	TargetDate    *time.Time `json:"targetDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type GiftStatus string

const (
	GiftLocked   GiftStatus = "locked"
	GiftUnlocked GiftStatus = "unlocked"
	GiftRedeemed GiftStatus = "redeemed"
)

func (s GiftStatus) IsValid() bool {
	switch s {
	case GiftLocked, GiftUnlocked, GiftRedeemed:
		return true
	default:
		return false
	}
}

type GiftType string

const (
	GiftSelfReward     GiftType = "self_reward"
	GiftFriendAssigned GiftType = "friend_assigned"
)

// Gift is a reward gated by an UnlockCondition. Status only ever moves
// locked -> unlocked -> redeemed. CurrentStreak is owned by the gift alone:
// it tracks progress toward a streak condition and nothing else writes it.
// LastStreakDate records the day the counter last advanced; it survives the
// daily routine reset, so gap detection never depends on task state.
type Gift struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    *string         `json:"description,omitempty"`
	Status         GiftStatus      `json:"status"`
	Type           GiftType        `json:"type"`
	Condition      UnlockCondition `json:"unlockCondition"`
	Price          float64         `json:"price"`
	Currency       string          `json:"currency"`
	RewardURL      *string         `json:"rewardUrl,omitempty"`
	GiftURL        *string         `json:"giftURL,omitempty"`
	CurrentStreak  int             `json:"currentStreak"`
	LastStreakDate *time.Time      `json:"lastStreakDate,omitempty"`
	UnlockedAt     *time.Time      `json:"unlockedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type User struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"displayName"`
	Level          int       `json:"level"`
	XP             int       `json:"xp"`
	TotalXP        int       `json:"totalXP"`
	CurrentTheme   string    `json:"currentTheme"`
	UnlockedThemes []string  `json:"unlockedThemes"`
	UnlockedBadges []string  `json:"unlockedBadges"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ActivityRecord is one row per user per calendar day, created lazily on the
// first completion of the day and mutated additively after that.
type ActivityRecord struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	Date                time.Time `json:"date"`
	CompletedTasksCount int       `json:"completedTasksCount"`
	TotalTasksCount     int       `json:"totalTasksCount"`
	XPGained            int       `json:"xpGained"`
	CompletionRate      float64   `json:"completionRate"`
}

// RecalculateRate recomputes CompletionRate from the counters.
func (a *ActivityRecord) RecalculateRate() {
	if a.TotalTasksCount > 0 {
		a.CompletionRate = float64(a.CompletedTasksCount) / float64(a.TotalTasksCount)
	} else {
		a.CompletionRate = 0
	}
}

type StreakState struct {
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
}

// ActivityRing holds the three normalized ring values.
type ActivityRing struct {
	Move     float64 `json:"move"`
	Exercise float64 `json:"exercise"`
	Stand    float64 `json:"stand"`
}

// AllClosed reports whether all three rings are full.
func (r ActivityRing) AllClosed() bool {
	return r.Move >= 1.0 && r.Exercise >= 1.0 && r.Stand >= 1.0
}

// HeatmapCell is one day of the calendar intensity grid. Intensity is 0-4.
type HeatmapCell struct {
	Date      time.Time `json:"date"`
	Intensity int       `json:"intensity"`
}
