package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/services"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

// maxImportSize bounds multipart template uploads.
const maxImportSize = 10 << 20

type TemplateHandler struct {
	BaseHandler
	templateService services.TemplateService
	importService   services.ImportService
}

type NormalizeTemplatesRequest struct {
	Templates []models.RawTemplate `json:"templates" validate:"required,min=1"`
}

type ReviseTemplateRequest struct {
	Current *models.Template   `json:"current" validate:"required"`
	Edited  models.RawTemplate `json:"edited" validate:"required"`
	Note    string             `json:"note" validate:"max=1000"`
}

type ArchiveTemplateRequest struct {
	Template *models.Template `json:"template" validate:"required"`
}

type ExportTemplatesRequest struct {
	Templates []*models.Template `json:"templates" validate:"required,min=1,dive,required"`
}

func NewTemplateHandler(
	templateService services.TemplateService,
	importService services.ImportService,
	v *validator.Validator,
	logger utils.Logger,
) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler:     NewBaseHandler(logger, v),
		templateService: templateService,
		importService:   importService,
	}
}

// NormalizeTemplates normalizes a batch of raw template documents
// @Summary Normalize templates
// @Tags templates
// @Accept json
// @Produce json
// @Param request body NormalizeTemplatesRequest true "Raw templates"
// @Success 200 {object} services.NormalizeBatchResult
// @Failure 400 {object} ErrorResponse
// @Router /templates/normalize [post]
func (h *TemplateHandler) NormalizeTemplates(c *gin.Context) {
	var req NormalizeTemplatesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Normalizing templates", "count", len(req.Templates))

	result, err := h.templateService.NormalizeBatch(c.Request.Context(), req.Templates)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReviseTemplate creates the next minor version of a template
// @Summary Revise template
// @Tags templates
// @Accept json
// @Produce json
// @Param request body ReviseTemplateRequest true "Current template and edited document"
// @Success 200 {object} services.RevisionResult
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /templates/revise [post]
func (h *TemplateHandler) ReviseTemplate(c *gin.Context) {
	var req ReviseTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Revising template", "template_id", req.Current.ID, "version", req.Current.Version)

	result, err := h.templateService.Revise(c.Request.Context(), req.Current, req.Edited, req.Note)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ArchiveTemplate marks a template archived
// @Summary Archive template
// @Tags templates
// @Accept json
// @Produce json
// @Param request body ArchiveTemplateRequest true "Template"
// @Success 200 {object} models.Template
// @Failure 409 {object} ErrorResponse
// @Router /templates/archive [post]
func (h *TemplateHandler) ArchiveTemplate(c *gin.Context) {
	var req ArchiveTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Archiving template", "template_id", req.Template.ID)

	archived, err := h.templateService.Archive(c.Request.Context(), req.Template)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, archived)
}

// ExportTemplates writes templates as canonical JSON documents, or as a
// spreadsheet with ?format=xlsx|csv
// @Summary Export templates
// @Tags templates
// @Accept json
// @Produce json
// @Param format query string false "json, xlsx or csv"
// @Router /templates/export [post]
func (h *TemplateHandler) ExportTemplates(c *gin.Context) {
	var req ExportTemplatesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	switch requestedFormat(c) {
	case formatXLSX:
		data, err := h.importService.ExportTemplatesToExcel(req.Templates)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		attachment(c, "templates.xlsx", xlsxContentType, data)
	case formatCSV:
		data, err := h.importService.ExportTemplatesToCSV(req.Templates)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		attachment(c, "templates.csv", csvContentType, data)
	case formatJSON:
		docs := make([]json.RawMessage, 0, len(req.Templates))
		for _, t := range req.Templates {
			doc, err := h.templateService.ExportCanonical(t)
			if err != nil {
				h.handleServiceError(c, err)
				return
			}
			docs = append(docs, doc)
		}
		c.JSON(http.StatusOK, gin.H{"templates": docs})
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: requestedFormat(c),
		})
	}
}

// ImportTemplates accepts a multipart upload of an .xlsx, .csv or canonical .json file
// @Summary Import templates
// @Tags templates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Template file"
// @Success 200 {object} models.TemplateImportResult
// @Failure 400 {object} ErrorResponse
// @Router /templates/import [post]
func (h *TemplateHandler) ImportTemplates(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File is required",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unable to read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing templates", "filename", fileHeader.Filename, "size", fileHeader.Size)

	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".json") {
		h.importCanonical(c, file)
		return
	}

	result, err := h.importService.ImportTemplatesFromFile(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if result.ErrorCount > 0 || len(result.Rejected) > 0 {
		h.LogWarn(c, "Template import finished with errors",
			"filename", fileHeader.Filename,
			"row_errors", result.ErrorCount,
			"rejected_templates", len(result.Rejected))
	}

	c.JSON(http.StatusOK, result)
}

func (h *TemplateHandler) importCanonical(c *gin.Context, file io.Reader) {
	var doc json.RawMessage
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid JSON document",
			Details: err.Error(),
		})
		return
	}

	t, err := h.templateService.ImportCanonical(c.Request.Context(), doc)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}
