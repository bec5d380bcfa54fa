package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	"github.com/noah-isme/edusmart/internal/stats"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name  string `json:"name" validate:"required"`
	Grade string `json:"grade" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

// StudentSummary is a student with its aggregate score figures. Average is nil without scores.
type StudentSummary struct {
	models.Student
	Average    *float64 `json:"average"`
	ScoreCount int      `json:"scoreCount"`
}

// StudentService handles student use-cases.
type StudentService struct {
	store     *DatasetStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(store *DatasetStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, validator: validate, logger: logger}
}

// List returns students matching filter in insertion order.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) []StudentSummary {
	data := s.store.Snapshot()
	out := make([]StudentSummary, 0, len(data.Students))
	for _, st := range data.Students {
		if !filter.Matches(st) {
			continue
		}
		out = append(out, summarize(st, data.Scores))
	}
	return out
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*StudentSummary, error) {
	data := s.store.Snapshot()
	st, ok := data.FindStudent(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	summary := summarize(st, data.Scores)
	return &summary, nil
}

// Create validates and appends a student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Grade = strings.TrimSpace(req.Grade)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}

	student := models.Student{ID: models.NewID(), Name: req.Name, Grade: req.Grade, Email: req.Email}
	err := s.store.Mutate(ctx, func(d *models.Dataset) (bool, error) {
		d.Students = append(d.Students, student)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return &student, nil
}

// Delete removes a student and every score of that student in one write. Deleting an unknown
// id is a no-op and reports removed=false.
func (s *StudentService) Delete(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.store.Mutate(ctx, func(d *models.Dataset) (bool, error) {
		removed = d.RemoveStudent(id)
		return removed, nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		s.logger.Info("student deleted", zap.String("student_id", id))
	}
	return removed, nil
}

func summarize(st models.Student, scores []models.ScoreEntry) StudentSummary {
	summary := StudentSummary{Student: st, ScoreCount: stats.StudentScoreCount(st.ID, scores)}
	if avg, ok := stats.StudentAverage(st.ID, scores); ok {
		summary.Average = &avg
	}
	return summary
}

// validationMessage turns validator field errors into "field is required" style text.
func validationMessage(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return appErrors.ErrValidation.Message
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email")
		case "oneof":
			parts = append(parts, field+" must be one of: "+fe.Param())
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
