package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edusmart/internal/dto"
	"github.com/noah-isme/edusmart/internal/models"
	"github.com/noah-isme/edusmart/internal/service"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) []service.StudentSummary
	Get(ctx context.Context, id string) (*service.StudentSummary, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type scoreService interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ScoreEntry, error)
	Add(ctx context.Context, req service.AddScoreRequest) (*models.ScoreEntry, error)
	Subjects(ctx context.Context) []models.Subject
}

// StudentHandler exposes student, score and subject endpoints.
type StudentHandler struct {
	students studentService
	scores   scoreService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, scores scoreService) *StudentHandler {
	return &StudentHandler{students: students, scores: scores}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or grade"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{Search: strings.TrimSpace(c.Query("search"))}
	students := h.students.List(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"total": len(students)})
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Delete godoc
// @Summary Delete student and their scores
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.students.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeleteStudentResponse{ID: id, Removed: removed})
}

// ListScores godoc
// @Summary List a student's scores
// @Tags Scores
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/scores [get]
func (h *StudentHandler) ListScores(c *gin.Context) {
	scores, err := h.scores.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores)
}

// AddScore godoc
// @Summary Record a score for a student
// @Tags Scores
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.AddScoreRequest true "Score payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/scores [post]
func (h *StudentHandler) AddScore(c *gin.Context) {
	var req dto.AddScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.scores.Add(c.Request.Context(), service.AddScoreRequest{
		StudentID: c.Param("id"),
		SubjectID: req.SubjectID,
		Score:     req.Score,
		Type:      models.ScoreType(req.Type),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Subjects godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *StudentHandler) Subjects(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.scores.Subjects(c.Request.Context()))
}
