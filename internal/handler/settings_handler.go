package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edusmart/internal/dto"
	"github.com/noah-isme/edusmart/internal/models"
	"github.com/noah-isme/edusmart/internal/service"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context) service.SettingsView
	Update(ctx context.Context, patch models.SettingsPatch) (service.SettingsView, error)
	Dataset(ctx context.Context) models.Dataset
	ClearAll(ctx context.Context) error
}

// SettingsHandler exposes settings and whole-dataset endpoints.
type SettingsHandler struct {
	settings settingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings settingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.settings.Get(c.Request.Context()))
}

// Update godoc
// @Summary Update settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSettingsRequest true "Partial settings"
// @Success 200 {object} response.Envelope
// @Router /settings [patch]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.settings.Update(c.Request.Context(), req.Patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Dataset godoc
// @Summary Get the whole dataset
// @Tags Dataset
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dataset [get]
func (h *SettingsHandler) Dataset(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.settings.Dataset(c.Request.Context()))
}

// ClearAll godoc
// @Summary Delete all data and restore defaults
// @Tags Dataset
// @Success 204
// @Router /dataset [delete]
func (h *SettingsHandler) ClearAll(c *gin.Context) {
	if err := h.settings.ClearAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
