package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/qa-compliance-service/internal/services"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

type LibraryHandler struct {
	BaseHandler
	libraryService services.LibraryService
}

type ClassifyEducationRequest struct {
	Topic string `json:"topic" validate:"required,max=500"`
}

type MatchCompetenciesRequest struct {
	Text  string `json:"text" validate:"required,max=5000"`
	Limit int    `json:"limit" validate:"min=0,max=50"`
}

func NewLibraryHandler(libraryService services.LibraryService, v *validator.Validator, logger utils.Logger) *LibraryHandler {
	return &LibraryHandler{
		BaseHandler:    NewBaseHandler(logger, v),
		libraryService: libraryService,
	}
}

// FTags lists the F-Tag catalog
// @Router /library/ftags [get]
func (h *LibraryHandler) FTags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ftags": h.libraryService.FTags(c.Request.Context())})
}

// SeedTemplates returns the normalized seed templates
// @Router /library/templates [get]
func (h *LibraryHandler) SeedTemplates(c *gin.Context) {
	result, err := h.libraryService.SeedTemplates(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ClassifyEducation maps an education topic to a category
// @Router /library/classify/education [post]
func (h *LibraryHandler) ClassifyEducation(c *gin.Context) {
	var req ClassifyEducationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.libraryService.ClassifyEducation(c.Request.Context(), req.Topic)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// MatchCompetencies ranks competencies by keyword hits in the text
// @Router /library/classify/competencies [post]
func (h *LibraryHandler) MatchCompetencies(c *gin.Context) {
	var req MatchCompetenciesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	matches, err := h.libraryService.MatchCompetencies(c.Request.Context(), req.Text, req.Limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
