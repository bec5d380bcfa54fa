package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edusmart/internal/models"
	"github.com/noah-isme/edusmart/internal/service"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
	"github.com/noah-isme/edusmart/pkg/response"
)

type exportService interface {
	Spreadsheet(ctx context.Context) (*service.ExportFile, error)
	ScoresCSV(ctx context.Context) (*service.ExportFile, error)
	Slides(ctx context.Context) (*service.ExportFile, error)
	Document(ctx context.Context, req service.DocumentRequest) (*service.ExportFile, error)
}

type exportJobService interface {
	CreateJob(ctx context.Context, req service.CreateExportJobRequest) (*models.ExportJob, error)
	GetStatus(ctx context.Context, id string) (*models.ExportJob, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes synchronous renders and background export jobs.
type ExportHandler struct {
	exports exportService
	jobs    exportJobService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports exportService, jobs exportJobService) *ExportHandler {
	return &ExportHandler{exports: exports, jobs: jobs}
}

// Spreadsheet godoc
// @Summary Download students and scores as a workbook
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /exports/spreadsheet [get]
func (h *ExportHandler) Spreadsheet(c *gin.Context) {
	h.send(c, func(ctx context.Context) (*service.ExportFile, error) { return h.exports.Spreadsheet(ctx) })
}

// ScoresCSV godoc
// @Summary Download scores as CSV
// @Tags Exports
// @Produce text/csv
// @Success 200 {file} binary
// @Router /exports/scores.csv [get]
func (h *ExportHandler) ScoresCSV(c *gin.Context) {
	h.send(c, func(ctx context.Context) (*service.ExportFile, error) { return h.exports.ScoresCSV(ctx) })
}

// Slides godoc
// @Summary Download the semester summary deck
// @Tags Exports
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 422 {object} response.Envelope
// @Router /exports/slides [get]
func (h *ExportHandler) Slides(c *gin.Context) {
	h.send(c, func(ctx context.Context) (*service.ExportFile, error) { return h.exports.Slides(ctx) })
}

// Document godoc
// @Summary Render markup content as a PDF document
// @Tags Exports
// @Accept json
// @Produce application/pdf
// @Param payload body service.DocumentRequest true "Document payload"
// @Success 200 {file} binary
// @Failure 422 {object} response.Envelope
// @Router /exports/document [post]
func (h *ExportHandler) Document(c *gin.Context) {
	var req service.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	h.send(c, func(ctx context.Context) (*service.ExportFile, error) { return h.exports.Document(ctx, req) })
}

func (h *ExportHandler) send(c *gin.Context, render func(context.Context) (*service.ExportFile, error)) {
	file, err := render(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// CreateJob godoc
// @Summary Queue a background export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body service.CreateExportJobRequest true "Export job"
// @Success 202 {object} response.Envelope
// @Router /exports/jobs [post]
func (h *ExportHandler) CreateJob(c *gin.Context) {
	var req service.CreateExportJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	job, err := h.jobs.CreateJob(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// JobStatus godoc
// @Summary Get background export status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/jobs/{id} [get]
func (h *ExportHandler) JobStatus(c *gin.Context) {
	job, err := h.jobs.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.jobs.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export file"))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentTypeFor(download.Filename), download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	})
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return service.ContentTypeXLSX
	case ".csv":
		return service.ContentTypeCSV
	case ".pdf":
		return service.ContentTypePDF
	default:
		return "application/octet-stream"
	}
}
