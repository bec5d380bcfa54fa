package dto

import "github.com/noah-isme/edusmart/internal/models"

// UpdateSettingsRequest captures PATCH /settings payload; omitted fields are left untouched.
type UpdateSettingsRequest struct {
	Theme         *string `json:"theme,omitempty"`
	GeminiAPIKey  *string `json:"geminiApiKey,omitempty"`
	SelectedModel *string `json:"selectedModel,omitempty"`
}

// Patch converts the request into a settings patch.
func (r UpdateSettingsRequest) Patch() models.SettingsPatch {
	patch := models.SettingsPatch{GeminiAPIKey: r.GeminiAPIKey, SelectedModel: r.SelectedModel}
	if r.Theme != nil {
		theme := models.Theme(*r.Theme)
		patch.Theme = &theme
	}
	return patch
}
