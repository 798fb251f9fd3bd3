package handlers

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/taxappeal/internal/dataset"
	apierrors "github.com/stwalsh4118/taxappeal/internal/errors"
	"github.com/stwalsh4118/taxappeal/internal/logger"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

// MockAppealService is a mock implementation of AppealService for testing
type MockAppealService struct {
	mock.Mock
}

func (m *MockAppealService) ListAreas(ctx context.Context) []services.AreaSummary {
	args := m.Called(ctx)
	areas, _ := args.Get(0).([]services.AreaSummary)
	return areas
}

func (m *MockAppealService) GetEvidence(ctx context.Context, areaCode string, assessedValue int64) (*services.EvidenceReport, error) {
	args := m.Called(ctx, areaCode, assessedValue)
	report, _ := args.Get(0).(*services.EvidenceReport)
	return report, args.Error(1)
}

func (m *MockAppealService) Analyze(ctx context.Context, req services.AnalyzeRequest) (*services.Analysis, error) {
	args := m.Called(ctx, req)
	analysis, _ := args.Get(0).(*services.Analysis)
	return analysis, args.Error(1)
}

func (m *MockAppealService) GetDraft(ctx context.Context, id uuid.UUID) (*models.PetitionDraft, error) {
	args := m.Called(ctx, id)
	draft, _ := args.Get(0).(*models.PetitionDraft)
	return draft, args.Error(1)
}

func (m *MockAppealService) ListDrafts(ctx context.Context, areaCode string, limit int) ([]models.PetitionDraft, error) {
	args := m.Called(ctx, areaCode, limit)
	drafts, _ := args.Get(0).([]models.PetitionDraft)
	return drafts, args.Error(1)
}

// MockRecordService is a mock implementation of RecordService for testing
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) Extract(ctx context.Context, data []byte) (*services.RecordResult, error) {
	args := m.Called(ctx, data)
	result, _ := args.Get(0).(*services.RecordResult)
	return result, args.Error(1)
}

func (m *MockRecordService) Manual(ctx context.Context, entry models.ManualEntry) (*services.RecordResult, error) {
	args := m.Called(ctx, entry)
	result, _ := args.Get(0).(*services.RecordResult)
	return result, args.Error(1)
}

// testUploadLimit keeps oversized-upload tests small.
const (
	testUploadLimit = 1024
	testOrigin      = "http://localhost:3000"
)

var testStart = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func testBundle() *dataset.Bundle {
	return dataset.NewBundle([]int{2025, 2026}, dataset.Tables{
		Summaries: []models.AreaSummaryTable{
			{Year: 2026, Rows: []models.AreaSummaryRow{
				{AreaCode: "AR-4", Subdivision: "ARBOR MEADOWS", AverageCostFactor: f64(0.85)},
			}},
		},
	})
}

type testServer struct {
	router  *gin.Engine
	appeals *MockAppealService
	records *MockRecordService
	clock   *clockwork.FakeClock
}

// setupTestServer wires the real router around mocked services.
func setupTestServer(db Pinger, bundle *dataset.Bundle) testServer {
	s := testServer{
		appeals: new(MockAppealService),
		records: new(MockRecordService),
		clock:   clockwork.NewFakeClockAt(testStart),
	}

	s.router = NewRouter(RouterConfig{
		Logger:         logger.Nop(),
		Health:         NewHealthHandler(db, bundle, s.clock, "test"),
		Areas:          NewAreaHandler(s.appeals),
		Records:        NewRecordHandler(s.records),
		Appeals:        NewAppealHandler(s.appeals),
		CORSOrigins:    []string{testOrigin},
		MaxUploadBytes: testUploadLimit,
	})
	return s
}

func parseErrorResponse(t *testing.T, body io.Reader) apierrors.ErrorResponse {
	t.Helper()

	var response apierrors.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&response))
	return response
}
