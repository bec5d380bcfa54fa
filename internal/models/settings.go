package models

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ValidTheme reports whether t is a known theme.
func ValidTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark
}

// AIModel describes a text generation model the report generator may call.
type AIModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"isDefault"`
}

// KnownModels lists generation models in fallback order.
var KnownModels = []AIModel{
	{ID: "gemini-3-flash-preview", Name: "Gemini 3 Flash", Description: "Nhanh, tiết kiệm quota", Default: true},
	{ID: "gemini-3-pro-preview", Name: "Gemini 3 Pro", Description: "Mạnh mẽ, phân tích sâu"},
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Description: "Ổn định, dự phòng"},
}

// DefaultModelID is the first known model.
func DefaultModelID() string {
	return KnownModels[0].ID
}

// KnownModelIDs returns the model identifiers in fallback order.
func KnownModelIDs() []string {
	ids := make([]string, len(KnownModels))
	for i, m := range KnownModels {
		ids[i] = m.ID
	}
	return ids
}

// IsKnownModel reports whether id names a known model.
func IsKnownModel(id string) bool {
	for _, m := range KnownModels {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Settings holds user preferences. GeminiAPIKey may be empty, which disables AI operations.
type Settings struct {
	Theme         Theme  `json:"theme"`
	GeminiAPIKey  string `json:"geminiApiKey"`
	SelectedModel string `json:"selectedModel"`
}

// SettingsPatch carries a partial settings update; nil fields are left untouched.
type SettingsPatch struct {
	Theme         *Theme
	GeminiAPIKey  *string
	SelectedModel *string
}

// Apply returns s with every non-nil patch field merged in.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.GeminiAPIKey != nil {
		s.GeminiAPIKey = *p.GeminiAPIKey
	}
	if p.SelectedModel != nil {
		s.SelectedModel = *p.SelectedModel
	}
	return s
}

// HasAPIKey reports whether AI operations are available.
func (s Settings) HasAPIKey() bool {
	return s.GeminiAPIKey != ""
}

// MaskedAPIKey hides all but the last four characters of the key.
func (s Settings) MaskedAPIKey() string {
	key := []rune(s.GeminiAPIKey)
	if len(key) == 0 {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + string(key[len(key)-4:])
}
