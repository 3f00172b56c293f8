package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/services"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

type ScoringHandler struct {
	BaseHandler
	scoringService services.ScoringService
}

// Templates are accepted in any shape the normalizer understands, canonical or legacy.
type ScoreSampleRequest struct {
	Template models.RawTemplate `json:"template" validate:"required"`
	Answers  map[string]string  `json:"answers"`
}

type ScoreSessionRequest struct {
	Template models.RawTemplate  `json:"template" validate:"required"`
	Session  models.AuditSession `json:"session"`
}

func NewScoringHandler(scoringService services.ScoringService, v *validator.Validator, logger utils.Logger) *ScoringHandler {
	return &ScoringHandler{
		BaseHandler:    NewBaseHandler(logger, v),
		scoringService: scoringService,
	}
}

// ScoreSample scores one sample's answers
// @Summary Score sample
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body ScoreSampleRequest true "Template and answers"
// @Success 200 {object} models.SampleResult
// @Failure 422 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /scoring/samples [post]
func (h *ScoringHandler) ScoreSample(c *gin.Context) {
	var req ScoreSampleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.scoringService.ScoreSample(c.Request.Context(), req.Template, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ScoreSession re-scores every sample of a session
// @Summary Score session
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body ScoreSessionRequest true "Template and session"
// @Success 200 {object} models.AuditSession
// @Router /scoring/sessions [post]
func (h *ScoringHandler) ScoreSession(c *gin.Context) {
	var req ScoreSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Scoring session", "session_id", req.Session.ID, "samples", len(req.Session.Samples))

	scored, err := h.scoringService.ScoreSession(c.Request.Context(), req.Template, req.Session)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scored)
}

// CompleteSession scores and closes a session, opening QA actions for failed samples
// @Summary Complete session
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body ScoreSessionRequest true "Template and session"
// @Success 200 {object} services.CompleteSessionResult
// @Failure 409 {object} ErrorResponse
// @Router /scoring/sessions/complete [post]
func (h *ScoringHandler) CompleteSession(c *gin.Context) {
	var req ScoreSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Completing session", "session_id", req.Session.ID, "template_id", req.Session.TemplateID)

	result, err := h.scoringService.CompleteSession(c.Request.Context(), req.Template, req.Session)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
