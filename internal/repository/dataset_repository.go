package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

// persistedDataset is the on-slot layout: the dataset fields plus a format version.
type persistedDataset struct {
	Version int `json:"version"`
	models.Dataset
}

// DatasetRepository loads and saves the whole dataset in one slot.
type DatasetRepository struct {
	slot       Slot
	sealer     *KeySealer
	seedAPIKey string
	logger     *zap.Logger
	onCorrupt  func()
}

// NewDatasetRepository constructs the repository. seedAPIKey prefills the API key of a fresh seed.
func NewDatasetRepository(slot Slot, sealer *KeySealer, seedAPIKey string, logger *zap.Logger) *DatasetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetRepository{slot: slot, sealer: sealer, seedAPIKey: seedAPIKey, logger: logger}
}

// OnCorruption registers a callback invoked whenever a corrupted slot is replaced by the seed.
func (r *DatasetRepository) OnCorruption(fn func()) {
	r.onCorrupt = fn
}

// Seed returns the default dataset.
func (r *DatasetRepository) Seed() models.Dataset {
	return models.DefaultDataset(r.seedAPIKey)
}

// Load reads the slot. An empty slot yields the seed. Unparsable content is logged and also
// yields the seed; only backend failures are returned as errors.
func (r *DatasetRepository) Load(ctx context.Context) (models.Dataset, error) {
	raw, err := r.slot.Read(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrSlotEmpty) {
			return r.Seed(), nil
		}
		return models.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}

	var stored persistedDataset
	if err := json.Unmarshal(raw, &stored); err != nil {
		r.logger.Warn("stored dataset is corrupted, starting from defaults",
			zap.Error(appErrors.Wrap(err, appErrors.ErrStorageCorrupted.Code, appErrors.ErrStorageCorrupted.Status, appErrors.ErrStorageCorrupted.Message)),
			zap.Int("bytes", len(raw)),
		)
		if r.onCorrupt != nil {
			r.onCorrupt()
		}
		return r.Seed(), nil
	}
	if stored.Version == 0 {
		stored.Version = models.DatasetVersion
	}
	if stored.Version != models.DatasetVersion {
		r.logger.Warn("stored dataset has an unexpected version", zap.Int("version", stored.Version))
	}

	dataset := stored.Dataset
	dataset.Normalize()
	key, err := r.sealer.Unseal(dataset.Settings.GeminiAPIKey)
	if err != nil {
		r.logger.Warn("stored API key could not be unsealed, clearing it", zap.Error(err))
		key = ""
	}
	dataset.Settings.GeminiAPIKey = key
	return dataset, nil
}

// Save overwrites the slot with the whole dataset.
func (r *DatasetRepository) Save(ctx context.Context, dataset models.Dataset) error {
	key, err := r.sealer.Seal(dataset.Settings.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("seal api key: %w", err)
	}
	dataset.Settings.GeminiAPIKey = key

	payload, err := json.Marshal(persistedDataset{Version: models.DatasetVersion, Dataset: dataset})
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := r.slot.Write(ctx, payload); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}

// Clear removes the slot. The in-memory dataset is the caller's concern.
func (r *DatasetRepository) Clear(ctx context.Context) error {
	if err := r.slot.Remove(ctx); err != nil {
		return fmt.Errorf("clear dataset: %w", err)
	}
	return nil
}
