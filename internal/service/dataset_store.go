package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

type datasetPersister interface {
	Load(ctx context.Context) (models.Dataset, error)
	Save(ctx context.Context, dataset models.Dataset) error
	Clear(ctx context.Context) error
	Seed() models.Dataset
}

// DatasetStore owns the in-memory dataset. Every change runs on a private copy under the write
// lock and is persisted before it becomes visible, so a failed write leaves the state untouched.
type DatasetStore struct {
	mu      sync.RWMutex
	data    models.Dataset
	repo    datasetPersister
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewDatasetStore loads the persisted dataset, falling back to the seed when nothing is stored.
func NewDatasetStore(ctx context.Context, repo datasetPersister, metrics *MetricsService, logger *zap.Logger) (*DatasetStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := repo.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dataset")
	}
	logger.Info("dataset loaded",
		zap.Int("students", len(data.Students)),
		zap.Int("scores", len(data.Scores)),
		zap.Bool("has_api_key", data.Settings.HasAPIKey()),
	)
	return &DatasetStore{data: data, repo: repo, metrics: metrics, logger: logger, now: time.Now}, nil
}

// Snapshot returns a deep copy of the current dataset.
func (s *DatasetStore) Snapshot() models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Settings returns the current settings.
func (s *DatasetStore) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings
}

// Today returns the current calendar date in models.DateLayout.
func (s *DatasetStore) Today() string {
	return s.now().Format(models.DateLayout)
}

// Mutate applies fn to a copy of the dataset. When fn reports a change the copy is persisted
// and then published; when fn returns an error or no change nothing is written.
func (s *DatasetStore) Mutate(ctx context.Context, fn func(*models.Dataset) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.Clone()
	changed, err := fn(&working)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	err = s.repo.Save(ctx, working)
	s.metrics.RecordDatasetWrite(err)
	if err != nil {
		s.logger.Error("failed to persist dataset", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save data")
	}
	s.data = working
	return nil
}

// Reset removes the stored slot and reinitialises the in-memory dataset to the seed.
func (s *DatasetStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error("failed to clear dataset", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear data")
	}
	s.data = s.repo.Seed()
	s.logger.Info("dataset reset to defaults")
	return nil
}
