package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/storage"
)

type memorySlot struct {
	data     []byte
	readErr  error
	writeErr error
	writes   int
}

func (m *memorySlot) Read(ctx context.Context) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.data == nil {
		return nil, appErrors.ErrSlotEmpty
	}
	return m.data, nil
}

func (m *memorySlot) Write(ctx context.Context, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memorySlot) Remove(ctx context.Context) error {
	m.data = nil
	return nil
}

func sampleDataset() models.Dataset {
	d := models.DefaultDataset("AIza-key")
	d.Students = []models.Student{
		{ID: "s1", Name: "An", Grade: "10A1"},
		{ID: "s2", Name: "Bình", Grade: "10A2", Email: "binh@example.com"},
	}
	d.Scores = []models.ScoreEntry{
		{ID: "e1", StudentID: "s1", SubjectID: "math", Score: 9.25, Type: models.ScoreTypeQuiz, Date: "2024-01-15"},
		{ID: "e2", StudentID: "s2", SubjectID: "english", Score: 0, Type: models.ScoreTypeFinal, Date: "2024-02-10"},
	}
	d.Settings.Theme = models.ThemeDark
	d.Settings.SelectedModel = "gemini-2.5-flash"
	return d
}

func TestDatasetRepositoryLoadEmptySlotReturnsSeed(t *testing.T) {
	repo := NewDatasetRepository(&memorySlot{}, nil, "env-key", nil)
	d, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDataset("env-key"), d)
}

func TestDatasetRepositoryRoundTripFileSlot(t *testing.T) {
	slot, err := storage.NewFileSlot(t.TempDir(), "edusmart_ai_data")
	require.NoError(t, err)
	repo := NewDatasetRepository(slot, NewKeySealer("secret"), "", nil)

	original := sampleDataset()
	require.NoError(t, repo.Save(context.Background(), original))

	raw, err := os.ReadFile(slot.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "AIza-key")
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.JSONEq(t, "1", string(envelope["version"]))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestDatasetRepositoryCorruptionReturnsSeed(t *testing.T) {
	slot := &memorySlot{data: []byte(`{"students": "not-an-array"`)}
	repo := NewDatasetRepository(slot, nil, "", nil)
	corrupted := 0
	repo.OnCorruption(func() { corrupted++ })

	d, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDataset(""), d)
	assert.Equal(t, 1, corrupted)
}

func TestDatasetRepositoryBackendFailureIsReturned(t *testing.T) {
	repo := NewDatasetRepository(&memorySlot{readErr: errors.New("dial tcp: refused")}, nil, "", nil)
	_, err := repo.Load(context.Background())
	require.Error(t, err)
}

func TestDatasetRepositoryMissingVersionAndCollections(t *testing.T) {
	slot := &memorySlot{data: []byte(`{"students":[{"id":"s1","name":"An","grade":"10A1"}],"settings":{"theme":"dark","geminiApiKey":"plain","selectedModel":"gemini-3-pro-preview"}}`)}
	d, err := NewDatasetRepository(slot, nil, "", nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, d.Students, 1)
	assert.Equal(t, models.DefaultSubjects(), d.Subjects)
	assert.NotNil(t, d.Scores)
	assert.Equal(t, "plain", d.Settings.GeminiAPIKey)
}

func TestDatasetRepositoryUnsealFailureDropsKey(t *testing.T) {
	slot := &memorySlot{}
	require.NoError(t, NewDatasetRepository(slot, NewKeySealer("one"), "", nil).Save(context.Background(), sampleDataset()))

	d, err := NewDatasetRepository(slot, NewKeySealer("two"), "", nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", d.Settings.GeminiAPIKey)
	assert.Len(t, d.Students, 2)
}

func TestDatasetRepositoryClear(t *testing.T) {
	slot := &memorySlot{data: []byte(`{}`)}
	repo := NewDatasetRepository(slot, nil, "", nil)
	require.NoError(t, repo.Clear(context.Background()))
	d, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.Seed(), d)
}
