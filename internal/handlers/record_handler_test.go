package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/stwalsh4118/taxappeal/internal/errors"
	"github.com/stwalsh4118/taxappeal/internal/extract"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

// uploadRequest builds a multipart request carrying content under field.
func uploadRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "record-card.pdf")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/record-cards", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRecordHandler_Upload(t *testing.T) {
	// Arrange
	s := setupTestServer(nil, testBundle())
	content := []byte("%PDF-1.7 card")
	s.records.On("Extract", mock.Anything, content).Return(&services.RecordResult{
		Record:         models.PropertyRecord{Address: "4810 PAULINA DR", AreaCode: "AR-4", AssessedValue: 200000},
		History:        []models.HistoryChange{},
		AreaRecognized: true,
	}, nil)

	// Act
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, uploadRequest(t, "file", content))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var response services.RecordResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "4810 PAULINA DR", response.Record.Address)
	assert.Equal(t, int64(200000), response.Record.AssessedValue)
	assert.True(t, response.AreaRecognized)
	s.records.AssertExpectations(t)
}

func TestRecordHandler_Upload_ExtractionFailed(t *testing.T) {
	// Arrange
	s := setupTestServer(nil, testBundle())
	cause := fmt.Errorf("%w: not a pdf", extract.ErrUnreadableDocument)
	s.records.On("Extract", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: %w", services.ErrManualEntryRequired, cause))

	// Act
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, uploadRequest(t, "file", []byte("garbage")))

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	response := parseErrorResponse(t, w.Body)
	assert.Equal(t, apierrors.ErrExtractionFailed, response.Error.Code)
	assert.Equal(t, true, response.Error.Details["manual_entry"])
	assert.Contains(t, response.Error.Details["reason"], "unreadable document")
}

func TestRecordHandler_Upload_BadRequests(t *testing.T) {
	tests := []struct {
		name           string
		req            func(t *testing.T) *http.Request
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "wrong field name",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "document", []byte("%PDF"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/record-cards", strings.NewReader("{}"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name: "over the upload limit",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", bytes.Repeat([]byte("x"), 2*testUploadLimit))
			},
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedCode:   apierrors.ErrPayloadTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(nil, testBundle())

			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, tt.req(t))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, parseErrorResponse(t, w.Body).Error.Code)
			s.records.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
		})
	}
}

func TestRecordHandler_Manual(t *testing.T) {
	// Arrange
	s := setupTestServer(nil, testBundle())
	entry := models.ManualEntry{Address: "4810 Paulina Dr", AreaCode: "AR-4", AssessedValue: 200000}
	s.records.On("Manual", mock.Anything, entry).Return(&services.RecordResult{
		Record:         models.PropertyRecord{Address: "4810 PAULINA DR", AreaCode: "AR-4", AssessedValue: 200000},
		AreaRecognized: true,
	}, nil)

	body := `{"address":"4810 Paulina Dr","area_code":"AR-4","assessed_value":200000}`

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/record-cards/manual", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var response services.RecordResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "4810 PAULINA DR", response.Record.Address)
	s.records.AssertExpectations(t)
}

func TestRecordHandler_Manual_Errors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
		expectedField  string
	}{
		{
			name:           "missing address",
			body:           `{"assessed_value":200000}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
			expectedField:  "address",
		},
		{
			name:           "assessed value over the manual limit",
			body:           `{"address":"1 ELM ST","assessed_value":5000000}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
			expectedField:  "assessed_value",
		},
		{
			name:           "malformed json",
			body:           `{"address":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name:           "unknown area",
			body:           `{"address":"1 ELM ST","area_code":"ZZ-9"}`,
			serviceErr:     services.ErrUnknownArea,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(nil, testBundle())
			if tt.serviceErr != nil {
				s.records.On("Manual", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/record-cards/manual", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			s.router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := parseErrorResponse(t, w.Body)
			assert.Equal(t, tt.expectedCode, response.Error.Code)
			if tt.expectedField != "" {
				assert.Contains(t, response.Error.Details, tt.expectedField)
			}
		})
	}
}
