package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edusmart/internal/service"
	"github.com/noah-isme/edusmart/internal/stats"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/response"
)

type analyticsService interface {
	Dashboard(ctx context.Context) service.Dashboard
	Ranking(ctx context.Context, limit int) []stats.RankedStudent
	Student(ctx context.Context, id string) (*service.StudentStats, error)
}

// AnalyticsHandler serves derived statistics.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard godoc
// @Summary Dashboard statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.analytics.Dashboard(c.Request.Context()))
}

// Ranking godoc
// @Summary Students ranked by average score
// @Tags Stats
// @Produce json
// @Param limit query int false "Maximum rows; 0 returns all"
// @Success 200 {object} response.Envelope
// @Router /stats/ranking [get]
func (h *AnalyticsHandler) Ranking(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Validation("limit must be an integer"))
			return
		}
		limit = v
	}
	response.JSON(c, http.StatusOK, h.analytics.Ranking(c.Request.Context(), limit))
}

// Student godoc
// @Summary Statistics of one student
// @Tags Stats
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /stats/students/{id} [get]
func (h *AnalyticsHandler) Student(c *gin.Context) {
	view, err := h.analytics.Student(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
