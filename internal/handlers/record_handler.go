package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/taxappeal/internal/errors"
	"github.com/stwalsh4118/taxappeal/internal/middleware"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

// uploadField is the multipart field holding the record card.
const uploadField = "file"

// RecordHandler handles record card upload and manual entry.
type RecordHandler struct {
	service services.RecordService
}

// NewRecordHandler creates a new RecordHandler instance.
func NewRecordHandler(service services.RecordService) *RecordHandler {
	return &RecordHandler{
		service: service,
	}
}

// Upload handles POST /api/v1/record-cards endpoint.
// It reads the uploaded record card. A card that cannot be read yields
// 422 EXTRACTION_FAILED so the client can switch to manual entry.
func (h *RecordHandler) Upload(c *gin.Context) {
	log := middleware.GetLogger(c)

	data, name, err := readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.PayloadTooLarge(c, "Record card exceeds the upload limit", map[string]interface{}{
				"limit_bytes": tooLarge.Limit,
			})
			return
		}
		apierrors.BadRequest(c, "A record card must be uploaded in the \"file\" field", nil)
		return
	}

	if log != nil {
		log.Info("Processing record card upload", map[string]interface{}{
			"filename": name,
			"bytes":    len(data),
		})
	}

	result, err := h.service.Extract(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, services.ErrManualEntryRequired) {
			apierrors.ExtractionFailed(c, "The record card could not be read; enter the property manually", map[string]interface{}{
				"manual_entry": true,
				"reason":       err.Error(),
			})
			return
		}
		apierrors.InternalServerError(c, "Failed to read record card", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Manual handles POST /api/v1/record-cards/manual endpoint.
func (h *RecordHandler) Manual(c *gin.Context) {
	var entry models.ManualEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	result, err := h.service.Manual(c.Request.Context(), entry)
	if err != nil {
		if errors.Is(err, services.ErrUnknownArea) {
			apierrors.BadRequest(c, "Area not found in the study data", map[string]interface{}{
				"area_code": entry.AreaCode,
			})
			return
		}
		apierrors.InternalServerError(c, "Failed to build property record", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// readUpload returns the uploaded file's bytes and name.
func readUpload(c *gin.Context) ([]byte, string, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return nil, "", err
	}

	f, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty upload")
	}
	return data, header.Filename, nil
}
