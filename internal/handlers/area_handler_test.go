package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/stwalsh4118/taxappeal/internal/errors"
	"github.com/stwalsh4118/taxappeal/internal/evidence"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

func TestAreaHandler_List(t *testing.T) {
	// Arrange
	s := setupTestServer(nil, testBundle())
	s.appeals.On("ListAreas", mock.Anything).Return([]services.AreaSummary{
		{Code: "AR-4", Subdivision: "ARBOR MEADOWS", LatestCostFactor: f64(0.85), Coverage: evidence.CoverageDropped},
		{Code: "PF-2", Subdivision: "PITTSFIELD WOODS", Coverage: evidence.CoverageCovered},
	})

	// Act
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/areas", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var response AreasResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "AR-4", response.Areas[0].Code)
	assert.Equal(t, evidence.CoverageDropped, response.Areas[0].Coverage)
	assert.Nil(t, response.Areas[1].LatestCostFactor)
	s.appeals.AssertExpectations(t)
}

func TestAreaHandler_Evidence(t *testing.T) {
	// Arrange
	s := setupTestServer(nil, testBundle())
	report := &services.EvidenceReport{
		Evidence: evidence.Evidence{AreaCode: "AR-4", Subdivision: "ARBOR MEADOWS", LatestYear: 2026},
		Sales:    evidence.SalesStats{Count: 0},
		Coverage: evidence.CoverageNever,
	}
	s.appeals.On("GetEvidence", mock.Anything, "AR-4", int64(200000)).Return(report, nil)

	// Act
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/areas/AR-4/evidence?assessed_value=200000", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "never", body["coverage_status"])
	ev, ok := body["evidence"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ARBOR MEADOWS", ev["subdivision"])
	s.appeals.AssertExpectations(t)
}

func TestAreaHandler_Evidence_Errors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "unknown area",
			path:           "/api/v1/areas/ZZ-9/evidence",
			serviceErr:     fmt.Errorf("%w: %q", services.ErrUnknownArea, "ZZ-9"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.ErrNotFound,
		},
		{
			name:           "negative assessed value",
			path:           "/api/v1/areas/AR-4/evidence?assessed_value=-5",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
		},
		{
			name:           "non-numeric assessed value",
			path:           "/api/v1/areas/AR-4/evidence?assessed_value=lots",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(nil, testBundle())
			if tt.serviceErr != nil {
				s.appeals.On("GetEvidence", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := parseErrorResponse(t, w.Body)
			assert.Equal(t, tt.expectedCode, response.Error.Code)
			assert.NotEmpty(t, response.Error.RequestID)
			if tt.serviceErr == nil {
				s.appeals.AssertNotCalled(t, "GetEvidence", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAreaHandler_Appeals(t *testing.T) {
	// Arrange
	s := setupTestServer(nil, testBundle())
	drafts := []models.PetitionDraft{
		{ID: uuid.New(), AreaCode: "AR-4", AppealRecommended: true},
		{ID: uuid.New(), AreaCode: "AR-4"},
	}
	s.appeals.On("ListDrafts", mock.Anything, "AR-4", defaultDraftLimit).Return(drafts, nil)

	// Act
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/areas/AR-4/appeals", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var response DraftListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, drafts[0].ID, response.Drafts[0].ID)
	s.appeals.AssertExpectations(t)
}

func TestAreaHandler_Appeals_Errors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "drafts disabled",
			path:           "/api/v1/areas/AR-4/appeals",
			serviceErr:     services.ErrDraftsDisabled,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   apierrors.ErrServiceUnavailable,
		},
		{
			name:           "unknown area",
			path:           "/api/v1/areas/ZZ-9/appeals?limit=5",
			serviceErr:     services.ErrUnknownArea,
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.ErrNotFound,
		},
		{
			name:           "limit out of range",
			path:           "/api/v1/areas/AR-4/appeals?limit=500",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(nil, testBundle())
			if tt.serviceErr != nil {
				s.appeals.On("ListDrafts", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, parseErrorResponse(t, w.Body).Error.Code)
		})
	}
}
