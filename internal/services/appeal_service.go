package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/stwalsh4118/taxappeal/internal/evidence"
	"github.com/stwalsh4118/taxappeal/internal/logger"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/observability"
	"github.com/stwalsh4118/taxappeal/internal/petition"
	"github.com/stwalsh4118/taxappeal/internal/repository"
	"github.com/stwalsh4118/taxappeal/internal/valuation"
)

// Assessed value bounds accepted for analysis
const (
	MinAssessedValue = 1
	MaxAssessedValue = 10_000_000
)

// Service-level errors
var (
	ErrUnknownArea          = errors.New("unknown area")
	ErrInvalidAssessedValue = errors.New("invalid assessed value")
	ErrDraftNotFound        = errors.New("draft not found")
	ErrDraftsDisabled       = errors.New("petition drafts are disabled")
)

// AreaSummary is one entry of the area catalogue.
type AreaSummary struct {
	LatestCostFactor *float64                `json:"latest_cost_factor,omitempty"`
	Code             string                  `json:"code"`
	Subdivision      string                  `json:"subdivision"`
	Coverage         evidence.CoverageStatus `json:"coverage"`
}

// EvidenceReport is an area's evidence with sales statistics taken against
// an assessed value, when one was given.
type EvidenceReport struct {
	Evidence evidence.Evidence       `json:"evidence"`
	Sales    evidence.SalesStats     `json:"sales"`
	Coverage evidence.CoverageStatus `json:"coverage_status"`
}

// AnalyzeRequest asks for a verdict and petition for one property.
// AreaCode falls back to the property's own area code when empty.
type AnalyzeRequest struct {
	Property      *models.PropertyRecord
	AreaCode      string
	AssessedValue int64
}

// Analysis is the full result of one appeal analysis.
type Analysis struct {
	DraftID  *uuid.UUID             `json:"draft_id,omitempty"`
	Property *models.PropertyRecord `json:"property,omitempty"`
	Report   EvidenceReport         `json:"report"`
	Verdict  valuation.Verdict      `json:"verdict"`
	Petition string                 `json:"petition"`
}

// AppealService defines the business operations behind an appeal.
type AppealService interface {
	// ListAreas returns the area catalogue in code order.
	ListAreas(ctx context.Context) []AreaSummary

	// GetEvidence aggregates an area's evidence. With a positive
	// assessedValue the sales statistics are computed against its TCV.
	// Returns ErrUnknownArea if the area is not in the catalogue.
	// Returns ErrInvalidAssessedValue for a negative assessedValue.
	GetEvidence(ctx context.Context, areaCode string, assessedValue int64) (*EvidenceReport, error)

	// Analyze values the property and composes its petition. When drafts
	// are enabled the petition is archived and DraftID is set.
	// Returns ErrUnknownArea or ErrInvalidAssessedValue for bad input.
	Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error)

	// GetDraft returns an archived petition draft.
	// Returns ErrDraftsDisabled when no archive is configured.
	// Returns ErrDraftNotFound if the ID is unknown.
	GetDraft(ctx context.Context, id uuid.UUID) (*models.PetitionDraft, error)

	// ListDrafts returns an area's most recent drafts, newest first.
	// Returns ErrDraftsDisabled when no archive is configured.
	ListDrafts(ctx context.Context, areaCode string, limit int) ([]models.PetitionDraft, error)
}

// appealService is the concrete implementation of AppealService.
type appealService struct {
	aggregator *evidence.Aggregator
	drafts     repository.DraftRepository
	clock      clockwork.Clock
	metrics    *observability.Metrics
	log        *logger.Logger
}

// NewAppealService creates a new instance of AppealService. drafts may be nil
// when the archive is disabled.
func NewAppealService(
	agg *evidence.Aggregator,
	drafts repository.DraftRepository,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	log *logger.Logger,
) AppealService {
	return &appealService{
		aggregator: agg,
		drafts:     drafts,
		clock:      clock,
		metrics:    metrics,
		log:        log,
	}
}

// ListAreas summarizes every catalogued area.
func (s *appealService) ListAreas(ctx context.Context) []AreaSummary {
	bundle := s.aggregator.Bundle()
	areas := bundle.Areas()
	latest := bundle.LatestYear()

	out := make([]AreaSummary, 0, len(areas))
	for _, code := range areas {
		out = append(out, AreaSummary{
			Code:             code,
			Subdivision:      s.aggregator.SubdivisionName(code),
			LatestCostFactor: s.aggregator.CostFactorTrend(code).For(latest),
			Coverage:         s.aggregator.SalesCoverage(code).Status(),
		})
	}
	return out
}

// GetEvidence validates the area and aggregates its evidence.
func (s *appealService) GetEvidence(ctx context.Context, areaCode string, assessedValue int64) (*EvidenceReport, error) {
	if assessedValue < 0 || assessedValue > MaxAssessedValue {
		s.log.Warn("Invalid assessed value provided", map[string]interface{}{
			"area_code":      areaCode,
			"assessed_value": assessedValue,
		})
		return nil, fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidAssessedValue, MinAssessedValue, MaxAssessedValue, assessedValue)
	}

	code, err := s.resolveArea(areaCode)
	if err != nil {
		return nil, err
	}

	report := s.report(code, assessedValue)
	return &report, nil
}

// Analyze runs the full appeal pipeline for one property.
func (s *appealService) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	assessed := req.AssessedValue
	if assessed == 0 && req.Property != nil {
		assessed = req.Property.AssessedValue
	}
	if assessed < MinAssessedValue || assessed > MaxAssessedValue {
		s.log.Warn("Invalid assessed value provided", map[string]interface{}{
			"area_code":      req.AreaCode,
			"assessed_value": assessed,
		})
		return nil, fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidAssessedValue, MinAssessedValue, MaxAssessedValue, assessed)
	}

	areaCode := req.AreaCode
	if areaCode == "" && req.Property != nil {
		areaCode = req.Property.AreaCode
	}
	code, err := s.resolveArea(areaCode)
	if err != nil {
		return nil, err
	}

	report := s.report(code, assessed)
	verdict := valuation.Evaluate(assessed, report.Evidence.LatestCostFactor(), report.Sales)
	text := petition.Compose(petition.Input{
		Property: req.Property,
		Evidence: report.Evidence,
		Sales:    report.Sales,
		Verdict:  verdict,
	})

	if verdict.AppealRecommended {
		s.metrics.Verdicts.WithLabelValues(observability.VerdictAppeal).Inc()
		s.metrics.Petitions.WithLabelValues(observability.FormPetition).Inc()
	} else {
		s.metrics.Verdicts.WithLabelValues(observability.VerdictNoAppeal).Inc()
		s.metrics.Petitions.WithLabelValues(observability.FormAnalysis).Inc()
	}

	s.log.Info("Appeal analysed", map[string]interface{}{
		"area_code":          code,
		"assessed_value":     assessed,
		"recommended_value":  verdict.RecommendedSEV,
		"appeal_recommended": verdict.AppealRecommended,
		"sale_count":         report.Sales.Count,
		"coverage":           report.Coverage,
	})

	analysis := &Analysis{
		Property: req.Property,
		Report:   report,
		Verdict:  verdict,
		Petition: text,
	}

	if s.drafts != nil {
		// A failed archive write leaves DraftID unset.
		if id, err := s.saveDraft(ctx, req.Property, code, verdict, text); err != nil {
			s.log.Error("Failed to archive petition draft", err, map[string]interface{}{
				"area_code": code,
			})
		} else {
			analysis.DraftID = &id
		}
	}

	return analysis, nil
}

// GetDraft loads an archived draft.
func (s *appealService) GetDraft(ctx context.Context, id uuid.UUID) (*models.PetitionDraft, error) {
	if s.drafts == nil {
		return nil, ErrDraftsDisabled
	}

	draft, err := s.drafts.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query draft", err, map[string]interface{}{
			"draft_id": id.String(),
		})
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}

	// Repository returns nil, nil when no draft found - transform to domain error
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// ListDrafts lists an area's archived drafts.
func (s *appealService) ListDrafts(ctx context.Context, areaCode string, limit int) ([]models.PetitionDraft, error) {
	if s.drafts == nil {
		return nil, ErrDraftsDisabled
	}

	code, err := s.resolveArea(areaCode)
	if err != nil {
		return nil, err
	}

	drafts, err := s.drafts.ListByArea(ctx, code, limit)
	if err != nil {
		s.log.Error("Failed to list drafts", err, map[string]interface{}{
			"area_code": code,
		})
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// resolveArea normalizes a code and checks it against the catalogue.
func (s *appealService) resolveArea(areaCode string) (string, error) {
	code := models.NormalizeAreaCode(areaCode)
	if !s.aggregator.Bundle().HasArea(code) {
		s.log.Warn("Unknown area requested", map[string]interface{}{
			"area_code": areaCode,
		})
		return "", fmt.Errorf("%w: %q", ErrUnknownArea, areaCode)
	}
	return code, nil
}

// report aggregates an area and times the aggregation.
func (s *appealService) report(code string, assessed int64) EvidenceReport {
	start := s.clock.Now()
	ev := s.aggregator.Aggregate(code)
	s.metrics.EvidenceDuration.Observe(s.clock.Since(start).Seconds())

	var sales evidence.SalesStats
	if assessed > 0 {
		sales = evidence.ComputeSalesStats(ev.ComparableSales, float64(models.TCVFromSEV(assessed)))
	} else {
		sales = evidence.SalesStats{Count: len(ev.ComparableSales)}
	}

	return EvidenceReport{
		Evidence: ev,
		Sales:    sales,
		Coverage: ev.Coverage.Status(),
	}
}

func (s *appealService) saveDraft(
	ctx context.Context,
	prop *models.PropertyRecord,
	code string,
	v valuation.Verdict,
	text string,
) (uuid.UUID, error) {
	draft := &models.PetitionDraft{
		ID:                uuid.New(),
		AreaCode:          code,
		AssessedValue:     v.AssessedValue,
		RecommendedValue:  v.RecommendedSEV,
		AppealRecommended: v.AppealRecommended,
		Petition:          text,
		CreatedAt:         s.clock.Now().UTC(),
	}
	if prop != nil {
		draft.ParcelNumber = optional(prop.ParcelNumber)
		draft.Address = optional(prop.Address)
	}

	if err := s.drafts.Save(ctx, draft); err != nil {
		return uuid.Nil, err
	}
	return draft.ID, nil
}

// optional maps an empty string to NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
