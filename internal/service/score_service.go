package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

// AddScoreRequest holds payload for recording a score entry.
type AddScoreRequest struct {
	StudentID string           `json:"studentId" validate:"required"`
	SubjectID string           `json:"subjectId" validate:"required"`
	Score     *float64         `json:"score" validate:"required"`
	Type      models.ScoreType `json:"type" validate:"required,oneof=quiz assignment midterm final"`
}

// ScoreService records and lists score entries.
type ScoreService struct {
	store     *DatasetStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScoreService constructs the score service.
func NewScoreService(store *DatasetStore, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{store: store, validator: validate, logger: logger}
}

// Subjects returns the fixed subject catalogue in declaration order.
func (s *ScoreService) Subjects(ctx context.Context) []models.Subject {
	return s.store.Snapshot().Subjects
}

// ListByStudent returns the student's entries in recorded order.
func (s *ScoreService) ListByStudent(ctx context.Context, studentID string) ([]models.ScoreEntry, error) {
	data := s.store.Snapshot()
	if _, ok := data.FindStudent(studentID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return data.ScoresOf(studentID), nil
}

// Add validates the request and appends a score entry dated today. A rejected request leaves
// the dataset unchanged.
func (s *ScoreService) Add(ctx context.Context, req AddScoreRequest) (*models.ScoreEntry, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	if err := models.ValidateScore(*req.Score); err != nil {
		return nil, appErrors.Validation(err.Error())
	}

	var entry models.ScoreEntry
	err := s.store.Mutate(ctx, func(d *models.Dataset) (bool, error) {
		if _, ok := d.FindStudent(req.StudentID); !ok {
			return false, appErrors.Validation("student does not exist")
		}
		if _, ok := d.FindSubject(req.SubjectID); !ok {
			return false, appErrors.Validation("subject does not exist")
		}
		entry = models.ScoreEntry{
			ID:        models.NewID(),
			StudentID: req.StudentID,
			SubjectID: req.SubjectID,
			Score:     *req.Score,
			Type:      req.Type,
			Date:      s.store.Today(),
		}
		d.Scores = append(d.Scores, entry)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("score recorded", zap.String("student_id", entry.StudentID), zap.String("subject_id", entry.SubjectID))
	return &entry, nil
}
