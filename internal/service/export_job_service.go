package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	"github.com/noah-isme/edusmart/internal/repository"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/jobs"
)

// ExportJobType is the queue job type of background exports.
const ExportJobType = "export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportFiles interface {
	ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	Cleanup(ttl time.Duration) ([]string, error)
}

// CreateExportJobRequest holds payload for queueing a background export.
type CreateExportJobRequest struct {
	Kind      models.ExportKind `json:"kind" validate:"required,oneof=student_report spreadsheet slides"`
	StudentID string            `json:"studentId" validate:"required_if=Kind student_report"`
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// ExportJobConfig governs cleanup of finished jobs.
type ExportJobConfig struct {
	ResultTTL time.Duration
}

// ExportJobService orchestrates background export job lifecycle management.
type ExportJobService struct {
	repo      exportJobStore
	queue     jobDispatcher
	files     exportFiles
	store     *DatasetStore
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportJobConfig
}

// NewExportJobService constructs the export job service.
func NewExportJobService(repo exportJobStore, queue jobDispatcher, files exportFiles, store *DatasetStore, validate *validator.Validate, logger *zap.Logger, cfg ExportJobConfig) *ExportJobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &ExportJobService{repo: repo, queue: queue, files: files, store: store, validator: validate, logger: logger, cfg: cfg}
}

// CreateJob validates the request, records the job and enqueues it.
func (s *ExportJobService) CreateJob(ctx context.Context, req CreateExportJobRequest) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	data := s.store.Snapshot()
	switch req.Kind {
	case models.ExportKindStudentReport:
		if !data.Settings.HasAPIKey() {
			return nil, appErrors.ErrConfiguration
		}
		if _, ok := data.FindStudent(req.StudentID); !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
	case models.ExportKindSlides:
		if len(data.Students) == 0 {
			return nil, appErrors.Clone(appErrors.ErrExport, "no students to summarize")
		}
	}

	job := &models.ExportJob{Kind: req.Kind, StudentID: req.StudentID, Status: models.ExportStatusQueued}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	s.logger.Info("export job queued", zap.String("job_id", job.ID), zap.String("kind", string(job.Kind)))
	return job, nil
}

// GetStatus returns job metadata.
func (s *ExportJobService) GetStatus(ctx context.Context, id string) (*models.ExportJob, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveDownload validates token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.files.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	if job.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{File: file, Filename: filepath.Base(relPath), ExpiresAt: expiresAt}, nil
}

// CleanupExpired removes finished jobs and files older than the result TTL.
func (s *ExportJobService) CleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Sugar().Warnw("cleanup list failed", "error", err)
		return
	}
	for _, job := range expired {
		if job.FilePath != "" {
			if err := s.files.Delete(job.FilePath); err != nil {
				s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
				continue
			}
		}
		_ = s.repo.Delete(ctx, job.ID)
	}
	removed, err := s.files.Cleanup(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
		return
	}
	if len(expired) > 0 || len(removed) > 0 {
		s.logger.Sugar().Infow("export cleanup finished", "jobs", len(expired), "files", len(removed))
	}
}

type studentAnalyzer interface {
	AnalyzeStudentPerformance(ctx context.Context, studentID string) (*FallbackResult, error)
	StudentName(studentID string) (string, bool)
}

type exportProducer interface {
	Spreadsheet(ctx context.Context) (*ExportFile, error)
	Slides(ctx context.Context) (*ExportFile, error)
	Document(ctx context.Context, req DocumentRequest) (*ExportFile, error)
	Persist(jobID string, file *ExportFile) (*ExportResult, error)
}

// ExportWorker bridges queue jobs to the export and insight services.
type ExportWorker struct {
	repo     exportJobStore
	exporter exportProducer
	insights studentAnalyzer
	logger   *zap.Logger
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo exportJobStore, exporter exportProducer, insights studentAnalyzer, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{repo: repo, exporter: exporter, insights: insights, logger: logger}
}

// Handle processes a queue job. Export failures are final and never retried.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return jobs.Permanent(err)
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing, Progress: &progress}); err != nil {
		return jobs.Permanent(err)
	}

	file, err := w.render(ctx, record)
	if err != nil {
		w.fail(ctx, job.ID, err)
		return jobs.Permanent(err)
	}
	result, err := w.exporter.Persist(record.ID, file)
	if err != nil {
		w.fail(ctx, job.ID, err)
		return jobs.Permanent(err)
	}

	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	noError := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		Filename:     &file.Filename,
		FilePath:     &result.RelativePath,
		DownloadURL:  &result.URL,
		ExpiresAt:    &result.ExpiresAt,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return jobs.Permanent(err)
	}
	return nil
}

func (w *ExportWorker) render(ctx context.Context, record *models.ExportJob) (*ExportFile, error) {
	switch record.Kind {
	case models.ExportKindSpreadsheet:
		return w.exporter.Spreadsheet(ctx)
	case models.ExportKindSlides:
		return w.exporter.Slides(ctx)
	case models.ExportKindStudentReport:
		name, ok := w.insights.StudentName(record.StudentID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		analysis, err := w.insights.AnalyzeStudentPerformance(ctx, record.StudentID)
		if err != nil {
			return nil, err
		}
		progress := 60
		_ = w.repo.Update(ctx, record.ID, repository.UpdateExportJobParams{Progress: &progress})
		return w.exporter.Document(ctx, DocumentRequest{
			Title:   fmt.Sprintf("Báo cáo học tập - %s", name),
			Content: analysis.Text,
		})
	default:
		return nil, appErrors.Validation(fmt.Sprintf("unsupported export kind %q", record.Kind))
	}
}

func (w *ExportWorker) fail(ctx context.Context, id string, cause error) {
	failed := models.ExportStatusFailed
	progress := 100
	msg := cause.Error()
	now := time.Now().UTC()
	if err := w.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job failed", "job_id", id, "error", err)
	}
}
