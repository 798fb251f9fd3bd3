package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/stwalsh4118/taxappeal/internal/dataset"
	"github.com/stwalsh4118/taxappeal/internal/extract"
	"github.com/stwalsh4118/taxappeal/internal/logger"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/observability"
)

// ErrManualEntryRequired is returned when a record card could not be read.
// Callers fall back to manual entry.
var ErrManualEntryRequired = errors.New("record card could not be read, manual entry required")

// RecordExtractor reads a record card document.
type RecordExtractor interface {
	Extract(ctx context.Context, data []byte) (models.PropertyRecord, error)
}

// RecordResult is a property record plus whether its area code is one the
// loaded dataset knows. When it is not, the user must pick the area.
type RecordResult struct {
	Record         models.PropertyRecord  `json:"record"`
	History        []models.HistoryChange `json:"history_changes"`
	AreaRecognized bool                   `json:"area_recognized"`
}

// RecordService defines how property records are obtained.
type RecordService interface {
	// Extract reads an uploaded record card.
	// Returns ErrManualEntryRequired, wrapping the extractor's error, when
	// the document cannot be opened or recognized.
	Extract(ctx context.Context, data []byte) (*RecordResult, error)

	// Manual builds a record from manually entered fields.
	// Returns ErrUnknownArea if an area code is given but not catalogued.
	Manual(ctx context.Context, entry models.ManualEntry) (*RecordResult, error)
}

// recordService is the concrete implementation of RecordService.
type recordService struct {
	extractor RecordExtractor
	bundle    *dataset.Bundle
	clock     clockwork.Clock
	metrics   *observability.Metrics
	log       *logger.Logger
}

// NewRecordService creates a new instance of RecordService.
func NewRecordService(
	extractor RecordExtractor,
	bundle *dataset.Bundle,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	log *logger.Logger,
) RecordService {
	return &recordService{
		extractor: extractor,
		bundle:    bundle,
		clock:     clock,
		metrics:   metrics,
		log:       log,
	}
}

// Extract runs the extractor and classifies the outcome.
func (s *recordService) Extract(ctx context.Context, data []byte) (*RecordResult, error) {
	start := s.clock.Now()
	rec, err := s.extractor.Extract(ctx, data)
	s.metrics.ExtractionDuration.Observe(s.clock.Since(start).Seconds())

	if err != nil {
		outcome := observability.OutcomeRecognitionFailed
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			s.metrics.Extractions.WithLabelValues(observability.OutcomeCanceled).Inc()
			return nil, err
		case errors.Is(err, extract.ErrUnreadableDocument):
			outcome = observability.OutcomeUnreadable
		}
		s.metrics.Extractions.WithLabelValues(outcome).Inc()

		s.log.Warn("Record card extraction failed", map[string]interface{}{
			"outcome": outcome,
			"bytes":   len(data),
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrManualEntryRequired, err)
	}

	result := s.result(rec)
	if result.AreaRecognized {
		s.metrics.Extractions.WithLabelValues(observability.OutcomeSuccess).Inc()
	} else {
		s.metrics.Extractions.WithLabelValues(observability.OutcomeUnknownArea).Inc()
		s.log.Info("Extracted area code is not catalogued", map[string]interface{}{
			"area_code":     rec.AreaCode,
			"parcel_number": rec.ParcelNumber,
		})
	}
	return result, nil
}

// Manual validates the area code and builds the record.
func (s *recordService) Manual(ctx context.Context, entry models.ManualEntry) (*RecordResult, error) {
	code := models.NormalizeAreaCode(entry.AreaCode)
	if code != "" && !s.bundle.HasArea(code) {
		s.log.Warn("Unknown area in manual entry", map[string]interface{}{
			"area_code": entry.AreaCode,
		})
		return nil, fmt.Errorf("%w: %q", ErrUnknownArea, entry.AreaCode)
	}

	rec := models.NewManualRecord(entry)
	s.log.Info("Manual record built", map[string]interface{}{
		"area_code":      rec.AreaCode,
		"assessed_value": rec.AssessedValue,
		"history_rows":   len(rec.History),
	})
	return s.result(rec), nil
}

func (s *recordService) result(rec models.PropertyRecord) *RecordResult {
	rec.SortHistory()
	return &RecordResult{
		Record:         rec,
		History:        rec.HistoryChanges(),
		AreaRecognized: rec.AreaCode != "" && s.bundle.HasArea(rec.AreaCode),
	}
}
