package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

// SettingsView is the read model of settings; the API key itself never leaves the process.
type SettingsView struct {
	Theme         models.Theme     `json:"theme"`
	SelectedModel string           `json:"selectedModel"`
	HasAPIKey     bool             `json:"hasApiKey"`
	MaskedAPIKey  string           `json:"maskedApiKey"`
	Models        []models.AIModel `json:"models"`
}

// SettingsService reads and updates user settings and resets the dataset.
type SettingsService struct {
	store  *DatasetStore
	logger *zap.Logger
}

// NewSettingsService constructs the settings service.
func NewSettingsService(store *DatasetStore, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{store: store, logger: logger}
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) SettingsView {
	return newSettingsView(s.store.Settings())
}

// Update merges the non-nil patch fields. Unknown themes or models are rejected rather than
// clamped; the API key is trimmed.
func (s *SettingsService) Update(ctx context.Context, patch models.SettingsPatch) (SettingsView, error) {
	if patch.Theme != nil && !models.ValidTheme(*patch.Theme) {
		return SettingsView{}, appErrors.Validation("theme must be light or dark")
	}
	if patch.SelectedModel != nil {
		model := strings.TrimSpace(*patch.SelectedModel)
		if !models.IsKnownModel(model) {
			return SettingsView{}, appErrors.Validation("unknown model: " + *patch.SelectedModel)
		}
		patch.SelectedModel = &model
	}
	if patch.GeminiAPIKey != nil {
		key := strings.TrimSpace(*patch.GeminiAPIKey)
		patch.GeminiAPIKey = &key
	}

	var updated models.Settings
	err := s.store.Mutate(ctx, func(d *models.Dataset) (bool, error) {
		next := patch.Apply(d.Settings)
		updated = next
		if next == d.Settings {
			return false, nil
		}
		d.Settings = next
		return true, nil
	})
	if err != nil {
		return SettingsView{}, err
	}
	s.logger.Info("settings updated", zap.String("model", updated.SelectedModel), zap.Bool("has_api_key", updated.HasAPIKey()))
	return newSettingsView(updated), nil
}

// Dataset returns a snapshot of the whole dataset with the API key masked.
func (s *SettingsService) Dataset(ctx context.Context) models.Dataset {
	data := s.store.Snapshot()
	data.Settings.GeminiAPIKey = data.Settings.MaskedAPIKey()
	return data
}

// ClearAll removes the stored slot and resets the in-memory dataset to the seed.
func (s *SettingsService) ClearAll(ctx context.Context) error {
	return s.store.Reset(ctx)
}

func newSettingsView(settings models.Settings) SettingsView {
	return SettingsView{
		Theme:         settings.Theme,
		SelectedModel: settings.SelectedModel,
		HasAPIKey:     settings.HasAPIKey(),
		MaskedAPIKey:  settings.MaskedAPIKey(),
		Models:        models.KnownModels,
	}
}
