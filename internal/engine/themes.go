package engine

import "github.com/datefujinari/giftytask/internal/domain"

// DefaultTheme is always unlocked.
const DefaultTheme = "default"

// ThemeDef is a UI theme gated behind a user level.
type ThemeDef struct {
	ID            string
	Name          string
	RequiredLevel int
}

func builtinThemes() []ThemeDef {
	return []ThemeDef{
		{ID: DefaultTheme, Name: "Default", RequiredLevel: 1},
		{ID: "ocean", Name: "Ocean", RequiredLevel: 3},
		{ID: "forest", Name: "Forest", RequiredLevel: 5},
		{ID: "sunset", Name: "Sunset", RequiredLevel: 8},
		{ID: "midnight", Name: "Midnight", RequiredLevel: 12},
		{ID: "aurora", Name: "Aurora", RequiredLevel: 20},
	}
}

// Themes returns every theme with its unlock level, in unlock order.
func Themes() []ThemeDef {
	return builtinThemes()
}

// ThemeUnlockedAt reports the required level for a theme id, false for an
// unknown id.
func ThemeUnlockedAt(id string) (int, bool) {
	for _, t := range builtinThemes() {
		if t.ID == id {
			return t.RequiredLevel, true
		}
	}
	return 0, false
}

// SyncThemeUnlocks adds every theme the user's level now covers to the
// unlocked set and returns the ids added this call.
func SyncThemeUnlocks(u *domain.User) []string {
	have := make(map[string]bool, len(u.UnlockedThemes))
	for _, id := range u.UnlockedThemes {
		have[id] = true
	}

	var added []string
	for _, t := range builtinThemes() {
		if have[t.ID] || u.Level < t.RequiredLevel {
			continue
		}
		u.UnlockedThemes = append(u.UnlockedThemes, t.ID)
		added = append(added, t.ID)
	}
	return added
}
