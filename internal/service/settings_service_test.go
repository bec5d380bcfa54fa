package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestSettingsServiceUpdateMerges(t *testing.T) {
	store, repo := newStoreForTest(t, nil)
	svc := NewSettingsService(store, nil)

	dark := models.ThemeDark
	view, err := svc.Update(context.Background(), models.SettingsPatch{Theme: &dark, GeminiAPIKey: strPtr("  AIzaSecret1234  ")})
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, view.Theme)
	assert.True(t, view.HasAPIKey)
	assert.Equal(t, "****1234", view.MaskedAPIKey)
	assert.Equal(t, models.DefaultModelID(), view.SelectedModel)
	assert.Equal(t, "AIzaSecret1234", store.Settings().GeminiAPIKey)
	assert.Equal(t, 1, repo.saves)
}

func TestSettingsServiceRejectsUnknownModelAndTheme(t *testing.T) {
	store, repo := newStoreForTest(t, nil)
	svc := NewSettingsService(store, nil)

	_, err := svc.Update(context.Background(), models.SettingsPatch{SelectedModel: strPtr("gpt-4")})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	sepia := models.Theme("sepia")
	_, err = svc.Update(context.Background(), models.SettingsPatch{Theme: &sepia})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Equal(t, models.DefaultDataset("").Settings, store.Settings())
	assert.Equal(t, 0, repo.saves)
}

func TestSettingsServiceUnchangedPatchSkipsWrite(t *testing.T) {
	store, repo := newStoreForTest(t, nil)
	svc := NewSettingsService(store, nil)

	light := models.ThemeLight
	_, err := svc.Update(context.Background(), models.SettingsPatch{Theme: &light})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.saves)
}

func TestSettingsServiceDatasetMasksKey(t *testing.T) {
	seed := datasetWithStudents("an")
	seed.Settings.GeminiAPIKey = "AIzaSecret9876"
	store, _ := newStoreForTest(t, seed)
	svc := NewSettingsService(store, nil)

	data := svc.Dataset(context.Background())
	assert.Equal(t, "****9876", data.Settings.GeminiAPIKey)
	assert.Equal(t, "AIzaSecret9876", store.Settings().GeminiAPIKey)
}

func TestSettingsServiceClearAll(t *testing.T) {
	store, repo := newStoreForTest(t, datasetWithStudents("an"))
	svc := NewSettingsService(store, nil)

	require.NoError(t, svc.ClearAll(context.Background()))
	assert.Empty(t, store.Snapshot().Students)
	assert.Equal(t, 1, repo.clears)
}
