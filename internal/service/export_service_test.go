package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/export"
	"github.com/noah-isme/edusmart/pkg/storage"
)

type failingSlides struct{}

func (failingSlides) Render(deck export.SlideDeck) ([]byte, error) {
	return nil, errors.New("font exploded")
}

func newExportServiceForTest(t *testing.T, seed *models.Dataset, renderers ExportRenderers) (*ExportService, *storage.LocalStorage, *DatasetStore) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store, _ := newStoreForTest(t, seed)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(store, files, signer, ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, NewMetricsService(), zap.NewNop(), renderers)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC) }
	return svc, files, store
}

func TestExportServiceSpreadsheet(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, analyticsDataset(), ExportRenderers{})

	file, err := svc.Spreadsheet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EduSmart_Data_20240520.xlsx", file.Filename)
	assert.Equal(t, ContentTypeXLSX, file.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Học sinh", "Điểm số"}, book.GetSheetList())

	rows, err := book.GetRows("Điểm số")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"an", "Toán học", "8", "quiz", "2024-01-10"}, rows[1])
}

func TestExportServiceScoresCSVUsesNAForOrphans(t *testing.T) {
	seed := datasetWithStudents("an")
	seed.Scores = []models.ScoreEntry{
		{ID: "1", StudentID: "an", SubjectID: "math", Score: 7.5, Type: models.ScoreTypeQuiz, Date: "2024-01-10"},
		{ID: "2", StudentID: "gone", SubjectID: "music", Score: 6, Type: models.ScoreTypeFinal, Date: "2024-01-11"},
	}
	svc, _, _ := newExportServiceForTest(t, seed, ExportRenderers{})

	file, err := svc.ScoresCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EduSmart_Scores_20240520.csv", file.Filename)
	body := string(file.Data)
	assert.Contains(t, body, "an,Toán học,7.5,quiz,2024-01-10")
	assert.Contains(t, body, "N/A,N/A,6,final,2024-01-11")
}

func TestExportServiceSlidesRequiresStudents(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, nil, ExportRenderers{})
	_, err := svc.Slides(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrExport))
}

func TestExportServiceSlides(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, analyticsDataset(), ExportRenderers{})
	file, err := svc.Slides(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EduSmart_TongKet_2024-05-20.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServiceRendererFailureIsExportError(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, analyticsDataset(), ExportRenderers{Slides: failingSlides{}})
	_, err := svc.Slides(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrExport))
	assert.Contains(t, err.Error(), "font exploded")
}

func TestExportServiceDocument(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, nil, ExportRenderers{})

	file, err := svc.Document(context.Background(), DocumentRequest{Title: "Báo cáo: An/10A1", Content: "# Tổng quan\n- **Tốt**"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.NotContains(t, file.Filename, "/")
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))

	_, err = svc.Document(context.Background(), DocumentRequest{Title: "x", Content: "  \n "})
	assert.True(t, errors.Is(err, appErrors.ErrExport))
}

func TestExportServicePersistAndOpen(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, nil, ExportRenderers{})

	result, err := svc.Persist("job-1", &ExportFile{Filename: "data.csv", Data: []byte("a,b\n")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/download/"))

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, result.RelativePath, relPath)

	f, err := svc.Open(relPath)
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(body))
}
