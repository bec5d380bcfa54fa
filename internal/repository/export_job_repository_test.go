package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

func TestExportJobRepositoryLifecycle(t *testing.T) {
	repo := NewExportJobRepository()
	ctx := context.Background()

	job := &models.ExportJob{Kind: models.ExportKindSlides, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(ctx, job))
	require.NotEmpty(t, job.ID)

	finished := models.ExportStatusFinished
	progress := 100
	done := time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.Update(ctx, job.ID, UpdateExportJobParams{Status: &finished, Progress: &progress, FinishedAt: &done}))

	stored, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, finished, stored.Status)
	assert.Equal(t, 100, stored.Progress)

	old, err := repo.ListFinishedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, old, 1)

	require.NoError(t, repo.Delete(ctx, job.ID))
	_, err = repo.GetByID(ctx, job.ID)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportJobRepositoryUpdateMissing(t *testing.T) {
	err := NewExportJobRepository().Update(context.Background(), "missing", UpdateExportJobParams{})
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportJobRepositoryListIncludesFailedJobs(t *testing.T) {
	repo := NewExportJobRepository()
	ctx := context.Background()
	cutoff := time.Now().Add(-time.Hour)
	ended := cutoff.Add(-time.Minute)
	later := time.Now()

	seed := []struct {
		status     models.ExportStatus
		finishedAt *time.Time
	}{
		{models.ExportStatusFailed, &ended},
		{models.ExportStatusFinished, &later},
		{models.ExportStatusProcessing, nil},
		{models.ExportStatusFailed, nil},
	}
	ids := make([]string, 0, len(seed))
	for _, s := range seed {
		job := &models.ExportJob{Kind: models.ExportKindSlides, Status: models.ExportStatusQueued}
		require.NoError(t, repo.Create(ctx, job))
		status := s.status
		require.NoError(t, repo.Update(ctx, job.ID, UpdateExportJobParams{Status: &status, FinishedAt: s.finishedAt}))
		ids = append(ids, job.ID)
	}

	old, err := repo.ListFinishedBefore(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, ids[0], old[0].ID)
	assert.Equal(t, models.ExportStatusFailed, old[0].Status)
}
