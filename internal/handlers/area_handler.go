package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/taxappeal/internal/errors"
	"github.com/stwalsh4118/taxappeal/internal/middleware"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

// defaultDraftLimit is how many drafts the list endpoint returns unless asked.
const defaultDraftLimit = 20

// AreaHandler handles the area catalogue and evidence endpoints.
type AreaHandler struct {
	service services.AppealService
}

// NewAreaHandler creates a new AreaHandler instance.
func NewAreaHandler(service services.AppealService) *AreaHandler {
	return &AreaHandler{
		service: service,
	}
}

// EvidenceRequest represents the query parameters for the evidence endpoint.
type EvidenceRequest struct {
	AssessedValue int64 `form:"assessed_value" binding:"gte=0,lte=10000000"`
}

// DraftListRequest represents the query parameters for the draft list.
type DraftListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// AreasResponse represents the response for the area catalogue.
type AreasResponse struct {
	Areas []services.AreaSummary `json:"areas"`
	Count int                    `json:"count"`
}

// DraftListResponse represents the response for an area's drafts.
type DraftListResponse struct {
	Drafts []models.PetitionDraft `json:"drafts"`
	Count  int                    `json:"count"`
}

// List handles GET /api/v1/areas endpoint.
func (h *AreaHandler) List(c *gin.Context) {
	areas := h.service.ListAreas(c.Request.Context())

	c.JSON(http.StatusOK, AreasResponse{
		Areas: areas,
		Count: len(areas),
	})
}

// Evidence handles GET /api/v1/areas/:code/evidence endpoint.
// It returns every evidence view for the area. With assessed_value the
// comparable sales are also summarized against the implied TCV.
func (h *AreaHandler) Evidence(c *gin.Context) {
	log := middleware.GetLogger(c)
	code := c.Param("code")

	var req EvidenceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	if log != nil {
		log.Info("Processing evidence request", map[string]interface{}{
			"area_code":      code,
			"assessed_value": req.AssessedValue,
		})
	}

	report, err := h.service.GetEvidence(c.Request.Context(), code, req.AssessedValue)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownArea):
			apierrors.NotFound(c, "Area not found in the study data")
		case errors.Is(err, services.ErrInvalidAssessedValue):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to aggregate evidence", err)
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// Appeals handles GET /api/v1/areas/:code/appeals endpoint.
// It lists the area's archived petition drafts, newest first.
func (h *AreaHandler) Appeals(c *gin.Context) {
	var req DraftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultDraftLimit
	}

	drafts, err := h.service.ListDrafts(c.Request.Context(), c.Param("code"), req.Limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDraftsDisabled):
			apierrors.ServiceUnavailable(c, "Petition drafts are not enabled")
		case errors.Is(err, services.ErrUnknownArea):
			apierrors.NotFound(c, "Area not found in the study data")
		default:
			apierrors.InternalServerError(c, "Failed to list petition drafts", err)
		}
		return
	}

	c.JSON(http.StatusOK, DraftListResponse{
		Drafts: drafts,
		Count:  len(drafts),
	})
}
