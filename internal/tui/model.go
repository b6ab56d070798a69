package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/datefujinari/giftytask/internal/domain"
	"github.com/datefujinari/giftytask/internal/engine"
	"github.com/datefujinari/giftytask/internal/ui"
)

// RunBoard drives the interactive dashboard until the user quits. The alt
// screen keeps the shell scrollback clean across refreshes.
func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer) error {
	p := tea.NewProgram(newBoardModel(ctx, svc), tea.WithOutput(out), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type tab int

const (
	tabTasks tab = iota
	tabGifts
	tabActivity
	tabCount
)

func (t tab) title() string {
	switch t {
	case tabTasks:
		return "Tasks"
	case tabGifts:
		return "Gifts"
	case tabActivity:
		return "Activity"
	default:
		return "?"
	}
}

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	user    *domain.User
	tasks   []domain.Task
	gifts   []domain.Gift
	streak  domain.StreakState
	ring    domain.ActivityRing
	heatmap []domain.HeatmapCell

	tab      tab
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	user    *domain.User
	tasks   []domain.Task
	gifts   []domain.Gift
	streak  domain.StreakState
	ring    domain.ActivityRing
	heatmap []domain.HeatmapCell
	err     error
}

type completedMsg struct {
	id  string
	res *engine.CompleteResult
	err error
}

type redeemedMsg struct {
	gift *domain.Gift
	err  error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.ResetRoutineTasks(m.ctx); err != nil {
			return loadedMsg{err: err}
		}
		u, err := m.svc.User(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks, err := m.svc.TaskRepo().ListAll(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		gifts, err := m.svc.GiftRepo().ListAll(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		streak, err := m.svc.Streak(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		ring, err := m.svc.ActivityRing(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		heatmap, err := m.svc.Heatmap(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{user: u, tasks: tasks, gifts: gifts, streak: streak, ring: ring, heatmap: heatmap}
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, id, nil)
		return completedMsg{id: id, res: res, err: err}
	}
}

func (m boardModel) redeemCmd(id string) tea.Cmd {
	return func() tea.Msg {
		g, err := m.svc.RedeemGift(m.ctx, id)
		return redeemedMsg{gift: g, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.user = msg.user
		m.tasks = msg.tasks
		m.gifts = msg.gifts
		m.streak = msg.streak
		m.ring = msg.ring
		m.heatmap = msg.heatmap
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Completed: +%d XP (level %d → %d)", msg.res.XPGained, msg.res.LevelBefore, msg.res.LevelAfter)
		if len(msg.res.UnlockedGifts) > 0 {
			m.lastLog += fmt.Sprintf(" %s %d gift(s) unlocked!", ui.IconGift, len(msg.res.UnlockedGifts))
		}
		return m, m.loadCmd()
	case redeemedMsg:
		if msg.err != nil {
			m.lastLog = "Redeem failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Redeemed %q. Enjoy!", msg.gift.Title)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % tabCount
			m.selected = 0
			return m, nil
		case "shift+tab", "left", "h":
			m.tab = (m.tab + tabCount - 1) % tabCount
			m.selected = 0
			return m, nil
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < m.rowCount()-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			if m.tab == tabTasks {
				rows := m.visibleTasks()
				if m.selected < 0 || m.selected >= len(rows) {
					return m, nil
				}
				t := rows[m.selected]
				if t.Status == domain.TaskCompleted {
					m.lastLog = "Already completed."
					return m, nil
				}
				if t.VerificationMode == domain.VerifyPhotoEvidence {
					m.lastLog = "Needs photo evidence; use gt do --photo <url>."
					return m, nil
				}
				m.lastLog = fmt.Sprintf("Completing %q…", t.Title)
				return m, m.completeCmd(t.ID)
			}
			if m.tab == tabGifts {
				if m.selected < 0 || m.selected >= len(m.gifts) {
					return m, nil
				}
				g := m.gifts[m.selected]
				if g.Status != domain.GiftUnlocked {
					m.lastLog = "Only unlocked gifts can be redeemed."
					return m, nil
				}
				return m, m.redeemCmd(g.ID)
			}
			return m, nil
		}
	}
	return m, nil
}

func (m boardModel) rowCount() int {
	switch m.tab {
	case tabTasks:
		return len(m.visibleTasks())
	case tabGifts:
		return len(m.gifts)
	default:
		return 0
	}
}

func (m boardModel) visibleTasks() []domain.Task {
	tasks := engine.FilterTasks(m.tasks, engine.FilterPending, time.Now())
	engine.SortTasks(tasks)
	return tasks
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	if m.loading {
		b.WriteString("Loading…\n")
	} else {
		switch m.tab {
		case tabTasks:
			b.WriteString(m.renderTasks())
		case tabGifts:
			b.WriteString(m.renderGifts())
		case tabActivity:
			b.WriteString(m.renderActivity())
		}
	}
	b.WriteString("\n")
	b.WriteString(ui.Dim.Render("tab: switch  j/k: move  c/space: complete/redeem  r: refresh  q: quit"))
	b.WriteString("\n" + m.lastLog)
	return b.String()
}

func (m boardModel) renderHeader() string {
	if m.user == nil {
		return ui.Heading(ui.IconGift, "GiftyTask — loading…")
	}
	levelStart := engine.XPRequiredForLevel(m.user.Level)
	levelEnd := engine.XPRequiredForLevel(m.user.Level + 1)
	bar := progressBar(m.user.TotalXP-levelStart, levelEnd-levelStart, 24)
	streak := ""
	if m.streak.CurrentStreak > 0 {
		streak = fmt.Sprintf("  %s %d-day streak", ui.IconFlame, m.streak.CurrentStreak)
	}
	return fmt.Sprintf("%s  %s Level %d  %s XP %d %s%s",
		ui.Heading(ui.IconGift, "GiftyTask"),
		ui.IconSparkle, m.user.Level,
		ui.IconBolt, m.user.TotalXP, bar, streak)
}

func (m boardModel) renderTabs() string {
	var parts []string
	for t := tabTasks; t < tabCount; t++ {
		label := " " + t.title() + " "
		if t == m.tab {
			parts = append(parts, ui.SelectedRow.Render(label))
		} else {
			parts = append(parts, ui.Muted.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m boardModel) renderTasks() string {
	rows := m.visibleTasks()
	if len(rows) == 0 {
		return ui.Dim.Render("(no pending tasks — add one with gt add)")
	}
	var out []string
	for i, t := range rows {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		due := ""
		if t.DueDate != nil {
			due = ui.Dim.Render(" due " + t.DueDate.Format("Jan 2"))
		}
		out = append(out, fmt.Sprintf("%s%s %s  %s  +%d XP%s",
			cursor, ui.TaskIcon(t), t.Title, ui.PriorityText(t.Priority), t.XPReward, due))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderGifts() string {
	if len(m.gifts) == 0 {
		return ui.Dim.Render("(no gifts yet — add one with gt gift add)")
	}
	var out []string
	for i, g := range m.gifts {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		progress := ""
		if g.Status == domain.GiftLocked && g.Condition.Type == domain.CondStreak && g.Condition.StreakDays != nil {
			progress = ui.Dim.Render(fmt.Sprintf("  %d/%d days", g.CurrentStreak, *g.Condition.StreakDays))
		}
		out = append(out, fmt.Sprintf("%s%s %s  %s%s",
			cursor, ui.IconGift, g.Title, ui.GiftStatusText(g.Status), progress))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderActivity() string {
	var out []string
	out = append(out, ui.PanelTitle.Render("Today's Rings"))
	out = append(out, ui.RingBar("Move    ", m.ring.Move, 20))
	out = append(out, ui.RingBar("Exercise", m.ring.Exercise, 20))
	out = append(out, ui.RingBar("Stand   ", m.ring.Stand, 20))
	if m.ring.AllClosed() {
		out = append(out, ui.Good.Render("All rings closed! "+ui.IconTrophy))
	}
	out = append(out, "")
	out = append(out, ui.PanelTitle.Render(fmt.Sprintf("Streak: %s %d (best %d)", ui.IconFlame, m.streak.CurrentStreak, m.streak.LongestStreak)))
	out = append(out, "")
	out = append(out, ui.PanelTitle.Render("Last 12 Weeks"))
	out = append(out, renderHeatmap(m.heatmap, 12*7))
	return strings.Join(out, "\n")
}

// renderHeatmap lays the trailing days out as a 7-row week grid, newest
// week on the right.
func renderHeatmap(cells []domain.HeatmapCell, maxDays int) string {
	if len(cells) == 0 {
		return ui.Dim.Render("(no activity yet)")
	}
	if len(cells) > maxDays {
		cells = cells[len(cells)-maxDays:]
	}

	weeks := (len(cells) + 6) / 7
	var rows [7][]string
	for w := 0; w < weeks; w++ {
		for d := 0; d < 7; d++ {
			idx := w*7 + d
			if idx >= len(cells) {
				rows[d] = append(rows[d], " ")
				continue
			}
			rows[d] = append(rows[d], ui.HeatmapCellText(cells[idx].Intensity))
		}
	}

	var out []string
	for d := 0; d < 7; d++ {
		out = append(out, strings.Join(rows[d], " "))
	}
	return strings.Join(out, "\n")
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
