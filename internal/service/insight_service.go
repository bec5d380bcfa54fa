package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edusmart/internal/models"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

// EmptyResponsePlaceholder is returned when a model succeeds without producing text.
const EmptyResponsePlaceholder = "Không thể nhận phản hồi từ AI."

// TextGenerator is the generation endpoint: one prompt to one model.
type TextGenerator interface {
	Generate(ctx context.Context, apiKey, model, prompt string) (string, error)
}

// ModelFailure records one failed attempt with the provider's message kept verbatim.
type ModelFailure struct {
	ModelID string `json:"modelId"`
	Message string `json:"message"`
}

func (f ModelFailure) String() string {
	return f.ModelID + ": " + f.Message
}

// AllModelsFailedError is returned when every model in the fallback list failed.
type AllModelsFailedError struct {
	Failures []ModelFailure
}

func (e *AllModelsFailedError) Error() string {
	lines := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		lines[i] = f.String()
	}
	return "Tất cả model đều thất bại. Chi tiết lỗi:\n" + strings.Join(lines, "\n")
}

// FallbackResult is the outcome of a successful fallback run.
type FallbackResult struct {
	Text     string         `json:"text"`
	Model    string         `json:"model"`
	Failures []ModelFailure `json:"failures,omitempty"`
}

// ModelOrder puts selected first, then every other known model in declared order, without
// duplicates.
func ModelOrder(selected string, known []string) []string {
	order := make([]string, 0, len(known)+1)
	seen := make(map[string]bool, len(known)+1)
	for _, id := range append([]string{selected}, known...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	return order
}

// GenerateWithFallback tries each model once, in order, and returns the first success.
// Attempts run sequentially and are detached from the caller's cancellation, so an abandoned
// request still runs the list to completion; per-attempt timeouts belong to gen.
func GenerateWithFallback(ctx context.Context, gen TextGenerator, prompt string, modelIDs []string, apiKey string) (*FallbackResult, error) {
	if apiKey == "" {
		return nil, appErrors.ErrConfiguration
	}
	if len(modelIDs) == 0 {
		return nil, appErrors.Validation("no models to try")
	}

	attemptCtx := context.WithoutCancel(ctx)
	failures := make([]ModelFailure, 0, len(modelIDs))
	for _, model := range modelIDs {
		text, err := gen.Generate(attemptCtx, apiKey, model, prompt)
		if err != nil {
			failures = append(failures, ModelFailure{ModelID: model, Message: providerMessage(err)})
			continue
		}
		if text == "" {
			text = EmptyResponsePlaceholder
		}
		return &FallbackResult{Text: text, Model: model, Failures: failures}, nil
	}
	return nil, &AllModelsFailedError{Failures: failures}
}

func providerMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return "Unknown error"
	}
	return msg
}

// InsightService produces AI generated reports from the dataset.
type InsightService struct {
	store   *DatasetStore
	gen     TextGenerator
	metrics *MetricsService
	logger  *zap.Logger
}

// NewInsightService constructs the insight service.
func NewInsightService(store *DatasetStore, gen TextGenerator, metrics *MetricsService, logger *zap.Logger) *InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{store: store, gen: gen, metrics: metrics, logger: logger}
}

// AnalyzeStudentPerformance asks the model for a narrative analysis of one student.
func (s *InsightService) AnalyzeStudentPerformance(ctx context.Context, studentID string) (*FallbackResult, error) {
	data := s.store.Snapshot()
	if !data.Settings.HasAPIKey() {
		return nil, appErrors.ErrConfiguration
	}
	student, ok := data.FindStudent(studentID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	prompt := studentAnalysisPrompt(student, data.Scores, data.Subjects)
	return s.run(ctx, "student_analysis", prompt, data.Settings)
}

// GenerateStudyPlan asks the model for a staged study plan on a free-text topic.
func (s *InsightService) GenerateStudyPlan(ctx context.Context, topic string) (*FallbackResult, error) {
	settings := s.store.Settings()
	if !settings.HasAPIKey() {
		return nil, appErrors.ErrConfiguration
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, appErrors.Validation("topic is required")
	}
	return s.run(ctx, "study_plan", studyPlanPrompt(topic), settings)
}

// StudentName resolves a student's display name for report titles.
func (s *InsightService) StudentName(studentID string) (string, bool) {
	st, ok := s.store.Snapshot().FindStudent(studentID)
	return st.Name, ok
}

func (s *InsightService) run(ctx context.Context, operation, prompt string, settings models.Settings) (*FallbackResult, error) {
	order := ModelOrder(settings.SelectedModel, models.KnownModelIDs())
	s.logger.Debug("generation started", zap.String("operation", operation), zap.String("models", describeOrder(order)))
	start := time.Now()
	result, err := GenerateWithFallback(ctx, s.gen, prompt, order, settings.GeminiAPIKey)
	s.metrics.ObserveAIGeneration(operation, time.Since(start))

	var failures []ModelFailure
	var exhausted *AllModelsFailedError
	switch {
	case err == nil:
		failures = result.Failures
	case errors.As(err, &exhausted):
		failures = exhausted.Failures
	default:
		return nil, err
	}
	for _, f := range failures {
		s.metrics.RecordAIAttempt(f.ModelID, false)
		s.logger.Warn("model attempt failed", zap.String("operation", operation), zap.String("model", f.ModelID), zap.String("error", f.Message))
	}

	if exhausted != nil {
		return nil, appErrors.Wrap(exhausted, appErrors.ErrAllModelsFailed.Code, appErrors.ErrAllModelsFailed.Status, exhausted.Error())
	}
	s.metrics.RecordAIAttempt(result.Model, true)
	s.logger.Info("generation succeeded", zap.String("operation", operation), zap.String("model", result.Model), zap.Int("fallbacks", len(result.Failures)))
	return result, nil
}

func describeOrder(order []string) string {
	return fmt.Sprintf("[%s]", strings.Join(order, " > "))
}
