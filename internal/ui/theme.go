package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/datefujinari/giftytask/internal/domain"
)

// GiftyTask theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconTask    = "📝"
	IconRoutine = "🔁"
	IconEpic    = "🗺️"
	IconGift    = "🎁"
	IconDone    = "✅"
	IconLocked  = "🔒"
	IconUnlock  = "🔓"
	IconFlame   = "🔥"
	IconSparkle = "✨"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconCamera  = "📷"
	IconWarn    = "⚠️"
	IconError   = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

// heatmapPalette mirrors the classic contribution-graph green ramp.
var heatmapPalette = [5]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#EBEDF0")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#C6E48B")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#7BC96F")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#239A3B")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#196127")),
}

// HeatmapCellText renders one heatmap cell at the given intensity (0-4).
func HeatmapCellText(intensity int) string {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 4 {
		intensity = 4
	}
	return heatmapPalette[intensity].Render("■")
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func TaskStatusText(status domain.TaskStatus) string {
	switch status {
	case domain.TaskCompleted:
		return Good.Render("completed")
	case domain.TaskInProgress:
		return H2.Render("in progress")
	case domain.TaskPending:
		return Warn.Render("pending")
	case domain.TaskArchived:
		return Dim.Render("archived")
	default:
		return Muted.Render(string(status))
	}
}

func GiftStatusText(status domain.GiftStatus) string {
	switch status {
	case domain.GiftUnlocked:
		return Good.Render(IconUnlock + " unlocked")
	case domain.GiftRedeemed:
		return Gold.Render(IconTrophy + " redeemed")
	case domain.GiftLocked:
		return Muted.Render(IconLocked + " locked")
	default:
		return Muted.Render(string(status))
	}
}

func PriorityText(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return Bad.Render("urgent")
	case domain.PriorityHigh:
		return Warn.Render("high")
	case domain.PriorityMedium:
		return H2.Render("medium")
	case domain.PriorityLow:
		return Dim.Render("low")
	default:
		return Muted.Render(string(p))
	}
}

func TaskIcon(t domain.Task) string {
	switch {
	case t.Status == domain.TaskCompleted:
		return IconDone
	case t.IsRoutine:
		return IconRoutine
	case t.VerificationMode == domain.VerifyPhotoEvidence:
		return IconCamera
	default:
		return IconTask
	}
}

// RingBar renders one activity ring as a fixed-width progress bar.
func RingBar(label string, value float64, width int) string {
	if width <= 0 {
		width = 10
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value*float64(width) + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := Warn
	if value >= 1 {
		style = Good
	}
	return fmt.Sprintf("%s %s %3.0f%%", Key.Render(label), style.Render(bar), value*100)
}
