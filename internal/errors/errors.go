package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/taxappeal/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrExtractionFailed   = "EXTRACTION_FAILED"
	ErrServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrPayloadTooLarge    = "PAYLOAD_TOO_LARGE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// requestFields are the log fields every error response carries.
func requestFields(c *gin.Context, requestID string) map[string]interface{} {
	return map[string]interface{}{
		"request_id": requestID,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
}

// warn writes a client-error response and logs it at warn level.
func warn(c *gin.Context, status int, code, logMsg, message string, details map[string]interface{}) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		fields := requestFields(c, requestID)
		fields["message"] = message
		if details != nil {
			fields["details"] = details
		}
		log.Warn(logMsg, fields)
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	warn(c, http.StatusNotFound, ErrNotFound, "Resource not found", message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	warn(c, http.StatusBadRequest, ErrBadRequest, "Bad request", message, details)
}

// ExtractionFailed returns a 422 response telling the client the record card
// could not be read and that the property must be entered manually.
func ExtractionFailed(c *gin.Context, message string, details map[string]interface{}) {
	warn(c, http.StatusUnprocessableEntity, ErrExtractionFailed, "Record card extraction failed", message, details)
}

// PayloadTooLarge returns a 413 response for uploads over the size limit.
func PayloadTooLarge(c *gin.Context, message string, details map[string]interface{}) {
	warn(c, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge, "Payload too large", message, details)
}

// ServiceUnavailable returns a 503 response for features that are disabled
// or whose backing store cannot be reached.
func ServiceUnavailable(c *gin.Context, message string) {
	warn(c, http.StatusServiceUnavailable, ErrServiceUnavailable, "Service unavailable", message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The error is logged with full context; the client only sees message.
func InternalServerError(c *gin.Context, message string, err error) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		fields := requestFields(c, requestID)
		fields["message"] = message
		log.Error("Internal server error", err, fields)
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrInternalServer,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	warn(c, http.StatusBadRequest, ErrValidation, "Validation error",
		"Validation failed for one or more fields", details)
}

// formatValidationError converts a validator.FieldError to a human-readable
// message for the tags the request structs use.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + err.Param()
	case "max":
		return "Must be at most " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "area_code":
		return "Must be an area code such as AR-4"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
