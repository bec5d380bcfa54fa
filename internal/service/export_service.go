package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	"github.com/noah-isme/edusmart/internal/stats"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/export"
	"github.com/noah-isme/edusmart/pkg/storage"
)

// Content types of rendered exports.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

const slideRankingSize = 8

var (
	studentSheetHeaders = []string{"ID", "Họ tên", "Lớp", "Email"}
	scoreSheetHeaders   = []string{"Học sinh", "Môn học", "Điểm", "Loại", "Ngày"}
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Table) ([]byte, error)
}

type spreadsheetRenderer interface {
	Render(sheets []export.Sheet) ([]byte, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

type slideRenderer interface {
	Render(deck export.SlideDeck) ([]byte, error)
}

// ExportRenderers groups the format renderers; nil entries get the default implementation.
type ExportRenderers struct {
	CSV         csvRenderer
	Spreadsheet spreadsheetRenderer
	Document    documentRenderer
	Slides      slideRenderer
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	FontFile  string
}

// ExportFile is a rendered artifact ready to be sent or stored.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportResult captures where a stored export can be downloaded.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// DocumentRequest holds payload for rendering a markup document.
type DocumentRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ExportService renders dataset exports and persists files for background jobs.
type ExportService struct {
	store     *DatasetStore
	storage   fileStorage
	signer    *storage.SignedURLSigner
	renderers ExportRenderers
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(store *DatasetStore, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger, renderers ExportRenderers) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	if renderers.CSV == nil {
		renderers.CSV = export.NewCSVExporter(true)
	}
	if renderers.Spreadsheet == nil {
		renderers.Spreadsheet = export.NewSpreadsheetExporter()
	}
	if renderers.Document == nil {
		renderers.Document = export.NewDocumentExporter(cfg.FontFile)
	}
	if renderers.Slides == nil {
		renderers.Slides = export.NewSlideDeckExporter(cfg.FontFile)
	}
	return &ExportService{
		store:     store,
		storage:   files,
		signer:    signer,
		renderers: renderers,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Spreadsheet renders the student and score sheets.
func (s *ExportService) Spreadsheet(ctx context.Context) (*ExportFile, error) {
	data := s.store.Snapshot()

	students := make([][]interface{}, 0, len(data.Students))
	for _, st := range data.Students {
		students = append(students, []interface{}{st.ID, st.Name, st.Grade, st.Email})
	}
	scores := make([][]interface{}, 0, len(data.Scores))
	for _, row := range flattenScores(data) {
		scores = append(scores, []interface{}{row.student, row.subject, row.score, string(row.kind), row.date})
	}

	payload, err := s.renderers.Spreadsheet.Render([]export.Sheet{
		{Name: "Học sinh", Headers: studentSheetHeaders, Rows: students},
		{Name: "Điểm số", Headers: scoreSheetHeaders, Rows: scores},
	})
	return s.finish(string(models.ExportKindSpreadsheet), err, &ExportFile{
		Filename:    fmt.Sprintf("EduSmart_Data_%s.xlsx", s.now().Format("20060102")),
		ContentType: ContentTypeXLSX,
		Data:        payload,
	})
}

// ScoresCSV renders the flattened score list as CSV.
func (s *ExportService) ScoresCSV(ctx context.Context) (*ExportFile, error) {
	data := s.store.Snapshot()
	rows := make([][]string, 0, len(data.Scores))
	for _, row := range flattenScores(data) {
		rows = append(rows, []string{row.student, row.subject, formatScore(row.score), string(row.kind), row.date})
	}
	payload, err := s.renderers.CSV.Render(export.Table{Headers: scoreSheetHeaders, Rows: rows})
	return s.finish("csv", err, &ExportFile{
		Filename:    fmt.Sprintf("EduSmart_Scores_%s.csv", s.now().Format("20060102")),
		ContentType: ContentTypeCSV,
		Data:        payload,
	})
}

// Slides renders the six-slide semester summary. It fails when there are no students.
func (s *ExportService) Slides(ctx context.Context) (*ExportFile, error) {
	data := s.store.Snapshot()
	if len(data.Students) == 0 {
		err := appErrors.Clone(appErrors.ErrExport, "no students to summarize")
		s.metrics.RecordExport(string(models.ExportKindSlides), err)
		return nil, err
	}

	overview := stats.Summarize(data)
	deck := export.SlideDeck{
		StudentCount: overview.TotalStudents,
		ScoreCount:   overview.TotalScores,
		GeneratedAt:  s.now(),
		Stats: []export.StatCard{
			{Label: "Tổng học sinh", Value: fmt.Sprint(overview.TotalStudents), Color: "6366F1"},
			{Label: "Điểm trung bình", Value: formatScore(overview.Average), Color: "10B981"},
			{Label: "Đạt Giỏi (≥8)", Value: fmt.Sprint(overview.ExcellentCount), Color: "F59E0B"},
			{Label: "Cần cải thiện (<5)", Value: fmt.Sprint(overview.NeedsImprovement), Color: "EF4444"},
		},
	}
	for _, sub := range stats.PerSubjectAverage(data.Scores, data.Subjects) {
		if sub.Average > 0 {
			deck.Bars = append(deck.Bars, export.ChartValue{Label: sub.Name, Value: sub.Average})
		}
	}
	for _, band := range stats.ScoreDistribution(data.Scores) {
		deck.Slices = append(deck.Slices, export.ChartValue{Label: bandLegend[band.Key], Value: float64(band.Count)})
	}
	for _, r := range stats.Ranking(data.Students, data.Scores, slideRankingSize) {
		deck.Ranking = append(deck.Ranking, export.RankRow{Name: r.Student.Name, Grade: r.Student.Grade, Average: r.Average, Count: r.Count})
	}

	payload, err := s.renderers.Slides.Render(deck)
	return s.finish(string(models.ExportKindSlides), err, &ExportFile{
		Filename:    fmt.Sprintf("EduSmart_TongKet_%s.pdf", s.now().Format(models.DateLayout)),
		ContentType: ContentTypePDF,
		Data:        payload,
	})
}

var bandLegend = map[stats.BandKey]string{
	stats.BandExcellent: "Giỏi (≥8)",
	stats.BandGood:      "Khá (6.5-8)",
	stats.BandAverage:   "Trung bình (5-6.5)",
	stats.BandWeak:      "Yếu (<5)",
}

// Document renders markup content under a title.
func (s *ExportService) Document(ctx context.Context, req DocumentRequest) (*ExportFile, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "EduSmart AI"
	}
	if strings.TrimSpace(req.Content) == "" {
		err := appErrors.Clone(appErrors.ErrExport, "document content is empty")
		s.metrics.RecordExport("document", err)
		return nil, err
	}
	payload, err := s.renderers.Document.Render(export.Document{Title: title, Markup: req.Content, GeneratedAt: s.now()})
	return s.finish("document", err, &ExportFile{
		Filename:    export.SafeFilename(title, ".pdf"),
		ContentType: ContentTypePDF,
		Data:        payload,
	})
}

func (s *ExportService) finish(kind string, err error, file *ExportFile) (*ExportFile, error) {
	s.metrics.RecordExport(kind, err)
	if err != nil {
		s.logger.Warn("export render failed", zap.String("kind", kind), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExport.Code, appErrors.ErrExport.Status, err.Error())
	}
	return file, nil
}

// Persist stores a rendered file for a job and signs a download URL for it.
func (s *ExportService) Persist(jobID string, file *ExportFile) (*ExportResult, error) {
	relPath, err := s.storage.Save(path.Join(jobID, file.Filename), file.Data)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

type scoreRow struct {
	student string
	subject string
	score   float64
	kind    models.ScoreType
	date    string
}

// flattenScores resolves names for every score; unresolved references become "N/A".
func flattenScores(data models.Dataset) []scoreRow {
	students := make(map[string]string, len(data.Students))
	for _, st := range data.Students {
		students[st.ID] = st.Name
	}
	subjects := make(map[string]string, len(data.Subjects))
	for _, sub := range data.Subjects {
		subjects[sub.ID] = sub.Name
	}
	rows := make([]scoreRow, 0, len(data.Scores))
	for _, sc := range data.Scores {
		row := scoreRow{student: "N/A", subject: "N/A", score: sc.Score, kind: sc.Type, date: sc.Date}
		if name, ok := students[sc.StudentID]; ok {
			row.student = name
		}
		if name, ok := subjects[sc.SubjectID]; ok {
			row.subject = name
		}
		rows = append(rows, row)
	}
	return rows
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
