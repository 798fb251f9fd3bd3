package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/stwalsh4118/taxappeal/internal/errors"
	"github.com/stwalsh4118/taxappeal/internal/middleware"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

// AppealHandler handles appeal analysis and petition drafts.
type AppealHandler struct {
	service services.AppealService
}

// NewAppealHandler creates a new AppealHandler instance.
func NewAppealHandler(service services.AppealService) *AppealHandler {
	return &AppealHandler{
		service: service,
	}
}

// AnalyzeRequest represents the body of an analysis request. Either field
// may be omitted when property carries it.
type AnalyzeRequest struct {
	Property      *models.PropertyRecord `json:"property"`
	AreaCode      string                 `json:"area_code" binding:"omitempty,area_code"`
	AssessedValue int64                  `json:"assessed_value" binding:"gte=0,lte=10000000"`
}

// Analyze handles POST /api/v1/appeals endpoint.
// It values the property against its area's evidence and composes the
// petition. The response carries draft_id when the draft was archived.
func (h *AppealHandler) Analyze(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if log != nil {
		log.Info("Processing appeal analysis", map[string]interface{}{
			"area_code":      req.AreaCode,
			"assessed_value": req.AssessedValue,
			"has_property":   req.Property != nil,
		})
	}

	analysis, err := h.service.Analyze(c.Request.Context(), services.AnalyzeRequest{
		Property:      req.Property,
		AreaCode:      req.AreaCode,
		AssessedValue: req.AssessedValue,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownArea):
			apierrors.BadRequest(c, "Area not found in the study data", map[string]interface{}{
				"area_code": req.AreaCode,
			})
		case errors.Is(err, services.ErrInvalidAssessedValue):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to analyse appeal", err)
		}
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Get handles GET /api/v1/appeals/:id endpoint.
func (h *AppealHandler) Get(c *gin.Context) {
	draft, ok := h.loadDraft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, draft)
}

// Petition handles GET /api/v1/appeals/:id/petition endpoint.
// The stored petition is served as a plain-text attachment.
func (h *AppealHandler) Petition(c *gin.Context) {
	draft, ok := h.loadDraft(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, petitionFilename(draft)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(draft.Petition))
}

// loadDraft resolves the :id parameter and writes the error response when
// the draft cannot be returned.
func (h *AppealHandler) loadDraft(c *gin.Context) (*models.PetitionDraft, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Draft ID must be a valid UUID", map[string]interface{}{
			"id": c.Param("id"),
		})
		return nil, false
	}

	draft, err := h.service.GetDraft(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrDraftNotFound) || errors.Is(err, services.ErrDraftsDisabled) {
			apierrors.NotFound(c, "Petition draft not found")
			return nil, false
		}
		apierrors.InternalServerError(c, "Failed to load petition draft", err)
		return nil, false
	}
	return draft, true
}

// petitionFilename names the download after the area and the draft ID.
func petitionFilename(d *models.PetitionDraft) string {
	kind := "analysis"
	if d.AppealRecommended {
		kind = "petition"
	}
	return fmt.Sprintf("%s-%s-%s.txt", kind, d.AreaCode, d.ID.String()[:8])
}
