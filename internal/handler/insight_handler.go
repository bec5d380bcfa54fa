package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edusmart/internal/dto"
	"github.com/noah-isme/edusmart/internal/service"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/response"
)

type insightService interface {
	AnalyzeStudentPerformance(ctx context.Context, studentID string) (*service.FallbackResult, error)
	GenerateStudyPlan(ctx context.Context, topic string) (*service.FallbackResult, error)
}

// InsightHandler exposes AI generated reports.
type InsightHandler struct {
	insights insightService
}

// NewInsightHandler constructs handler.
func NewInsightHandler(insights insightService) *InsightHandler {
	return &InsightHandler{insights: insights}
}

// AnalyzeStudent godoc
// @Summary Generate an AI analysis of a student
// @Tags AI
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /ai/students/{id}/analysis [post]
func (h *InsightHandler) AnalyzeStudent(c *gin.Context) {
	result, err := h.insights.AnalyzeStudentPerformance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toInsightResponse(result))
}

// StudyPlan godoc
// @Summary Generate a study plan for a topic
// @Tags AI
// @Accept json
// @Produce json
// @Param payload body dto.StudyPlanRequest true "Topic"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /ai/study-plan [post]
func (h *InsightHandler) StudyPlan(c *gin.Context) {
	var req dto.StudyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.insights.GenerateStudyPlan(c.Request.Context(), req.Topic)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toInsightResponse(result))
}

func toInsightResponse(result *service.FallbackResult) dto.InsightResponse {
	resp := dto.InsightResponse{Text: result.Text, Model: result.Model}
	for _, f := range result.Failures {
		resp.Fallbacks = append(resp.Fallbacks, dto.ModelFallback{ModelID: f.ModelID, Message: f.Message})
	}
	return resp
}
