package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

type persisterStub struct {
	data    *models.Dataset
	saves   int
	clears  int
	saveErr error
	loadErr error
	seedKey string
}

func (p *persisterStub) Load(ctx context.Context) (models.Dataset, error) {
	if p.loadErr != nil {
		return models.Dataset{}, p.loadErr
	}
	if p.data == nil {
		return p.Seed(), nil
	}
	return p.data.Clone(), nil
}

func (p *persisterStub) Save(ctx context.Context, dataset models.Dataset) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saves++
	clone := dataset.Clone()
	p.data = &clone
	return nil
}

func (p *persisterStub) Clear(ctx context.Context) error {
	p.clears++
	p.data = nil
	return nil
}

func (p *persisterStub) Seed() models.Dataset {
	return models.DefaultDataset(p.seedKey)
}

func newStoreForTest(t *testing.T, seed *models.Dataset) (*DatasetStore, *persisterStub) {
	t.Helper()
	repo := &persisterStub{data: seed}
	store, err := NewDatasetStore(context.Background(), repo, nil, zap.NewNop())
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }
	return store, repo
}

func datasetWithStudents(names ...string) *models.Dataset {
	d := models.DefaultDataset("")
	for i, name := range names {
		d.Students = append(d.Students, models.Student{ID: name, Name: name, Grade: "10A" + string(rune('1'+i))})
	}
	return &d
}

func TestNewDatasetStoreLoadError(t *testing.T) {
	_, err := NewDatasetStore(context.Background(), &persisterStub{loadErr: errors.New("redis down")}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestDatasetStoreMutateRollsBackOnSaveFailure(t *testing.T) {
	store, repo := newStoreForTest(t, datasetWithStudents("an"))
	repo.saveErr = errors.New("disk full")

	err := store.Mutate(context.Background(), func(d *models.Dataset) (bool, error) {
		d.Students = append(d.Students, models.Student{ID: "binh", Name: "Bình", Grade: "11"})
		return true, nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Len(t, store.Snapshot().Students, 1)
}

func TestDatasetStoreMutateSkipsWriteWithoutChange(t *testing.T) {
	store, repo := newStoreForTest(t, nil)
	require.NoError(t, store.Mutate(context.Background(), func(d *models.Dataset) (bool, error) {
		return false, nil
	}))
	assert.Equal(t, 0, repo.saves)
}

func TestDatasetStoreSnapshotIsIsolated(t *testing.T) {
	store, _ := newStoreForTest(t, datasetWithStudents("an"))
	snap := store.Snapshot()
	snap.Students[0].Name = "changed"
	assert.Equal(t, "an", store.Snapshot().Students[0].Name)
}

func TestDatasetStoreReset(t *testing.T) {
	store, repo := newStoreForTest(t, datasetWithStudents("an", "binh"))
	repo.seedKey = "env-key"

	require.NoError(t, store.Reset(context.Background()))
	snap := store.Snapshot()
	assert.Empty(t, snap.Students)
	assert.Len(t, snap.Subjects, 6)
	assert.Equal(t, "env-key", snap.Settings.GeminiAPIKey)
	assert.Equal(t, 1, repo.clears)
}

func TestStudentServiceCreateAndList(t *testing.T) {
	store, repo := newStoreForTest(t, nil)
	svc := NewStudentService(store, nil, nil)

	created, err := svc.Create(context.Background(), CreateStudentRequest{Name: "  Nguyễn An ", Grade: " 10A1 "})
	require.NoError(t, err)
	assert.Equal(t, "Nguyễn An", created.Name)
	assert.Equal(t, "10A1", created.Grade)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, repo.saves)

	list := svc.List(context.Background(), models.StudentFilter{Search: "nguyễn"})
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Average)
	assert.Equal(t, 0, list[0].ScoreCount)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	store, repo := newStoreForTest(t, nil)
	svc := NewStudentService(store, nil, nil)

	cases := []CreateStudentRequest{
		{Name: "   ", Grade: "10A1"},
		{Name: "An", Grade: ""},
		{Name: "An", Grade: "10A1", Email: "not-an-email"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	}
	assert.Empty(t, store.Snapshot().Students)
	assert.Equal(t, 0, repo.saves)
}

func TestStudentServiceDeleteCascades(t *testing.T) {
	seed := datasetWithStudents("an", "binh")
	seed.Scores = []models.ScoreEntry{
		{ID: "s1", StudentID: "an", SubjectID: "math", Score: 8, Type: models.ScoreTypeQuiz, Date: "2024-01-10"},
		{ID: "s2", StudentID: "binh", SubjectID: "math", Score: 6, Type: models.ScoreTypeQuiz, Date: "2024-01-11"},
		{ID: "s3", StudentID: "an", SubjectID: "physics", Score: 9, Type: models.ScoreTypeFinal, Date: "2024-01-12"},
	}
	store, repo := newStoreForTest(t, seed)
	svc := NewStudentService(store, nil, nil)

	removed, err := svc.Delete(context.Background(), "an")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, repo.saves)

	snap := store.Snapshot()
	require.Len(t, snap.Students, 1)
	require.Len(t, snap.Scores, 1)
	assert.Equal(t, "binh", snap.Scores[0].StudentID)
}

func TestStudentServiceDeleteUnknownIsNoop(t *testing.T) {
	store, repo := newStoreForTest(t, datasetWithStudents("an"))
	svc := NewStudentService(store, nil, nil)

	removed, err := svc.Delete(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 0, repo.saves)
	assert.Len(t, store.Snapshot().Students, 1)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	store, _ := newStoreForTest(t, nil)
	_, err := NewStudentService(store, nil, nil).Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestScoreServiceAddStampsToday(t *testing.T) {
	store, _ := newStoreForTest(t, datasetWithStudents("an"))
	svc := NewScoreService(store, nil, nil)

	entry, err := svc.Add(context.Background(), AddScoreRequest{StudentID: "an", SubjectID: "math", Score: scorePtr(8.5), Type: models.ScoreTypeMidterm})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", entry.Date)

	scores, err := svc.ListByStudent(context.Background(), "an")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 8.5, scores[0].Score)
}

func TestScoreServiceRejectionsLeaveDatasetUnchanged(t *testing.T) {
	store, repo := newStoreForTest(t, datasetWithStudents("an"))
	svc := NewScoreService(store, nil, nil)
	before := store.Snapshot()

	cases := []AddScoreRequest{
		{StudentID: "an", SubjectID: "math", Score: scorePtr(-0.1), Type: models.ScoreTypeQuiz},
		{StudentID: "an", SubjectID: "math", Score: scorePtr(10.1), Type: models.ScoreTypeQuiz},
		{StudentID: "an", SubjectID: "math", Score: scorePtr(math.NaN()), Type: models.ScoreTypeQuiz},
		{StudentID: "an", SubjectID: "math", Score: scorePtr(math.Inf(1)), Type: models.ScoreTypeQuiz},
		{StudentID: "ghost", SubjectID: "math", Score: scorePtr(5), Type: models.ScoreTypeQuiz},
		{StudentID: "an", SubjectID: "art", Score: scorePtr(5), Type: models.ScoreTypeQuiz},
		{StudentID: "an", SubjectID: "math", Score: scorePtr(5), Type: models.ScoreType("oral")},
		{StudentID: "an", SubjectID: "math", Type: models.ScoreTypeQuiz},
	}
	for _, req := range cases {
		_, err := svc.Add(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "request %+v", req)
	}
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, 0, repo.saves)
}

func TestScoreServiceAcceptsBounds(t *testing.T) {
	store, _ := newStoreForTest(t, datasetWithStudents("an"))
	svc := NewScoreService(store, nil, nil)
	for _, v := range []float64{0, 10} {
		_, err := svc.Add(context.Background(), AddScoreRequest{StudentID: "an", SubjectID: "english", Score: scorePtr(v), Type: models.ScoreTypeAssignment})
		require.NoError(t, err)
	}
	assert.Len(t, store.Snapshot().Scores, 2)
}

func TestScoreServiceListUnknownStudent(t *testing.T) {
	store, _ := newStoreForTest(t, nil)
	_, err := NewScoreService(store, nil, nil).ListByStudent(context.Background(), "ghost")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func scorePtr(v float64) *float64 { return &v }
