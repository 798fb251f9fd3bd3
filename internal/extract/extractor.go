// Package extract turns a scanned two-page record card into a PropertyRecord.
//
// Pages are rasterized, run through text recognition and then parsed field
// by field. Only a document that cannot be opened at all is an error; every
// other miss leaves the affected field at its zero value.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/taxappeal/internal/logger"
	"github.com/stwalsh4118/taxappeal/internal/models"
)

var (
	// ErrUnreadableDocument is returned when the bytes are not a document the
	// rasterizer can open.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrRecognitionFailed is returned when an opened page could not be
	// rendered or recognized.
	ErrRecognitionFailed = errors.New("text recognition failed")
)

// Document is an opened multi-page document.
type Document interface {
	NumPages() int
	// RenderPNG rasterizes page n (zero-based) at the given resolution.
	RenderPNG(n int, dpi float64) ([]byte, error)
	Close() error
}

// Rasterizer opens raw document bytes.
type Rasterizer interface {
	Open(data []byte) (Document, error)
}

// Recognizer reads the text of one page image.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// Options tunes page rendering.
type Options struct {
	DPI      float64
	MaxPages int
}

// DefaultOptions matches the resolution record cards are scanned at.
func DefaultOptions() Options {
	return Options{DPI: 300, MaxPages: 2}
}

// Extractor runs the record card pipeline.
type Extractor struct {
	rasterizer Rasterizer
	recognizer Recognizer
	opts       Options
	logger     *logger.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(r Rasterizer, rec Recognizer, opts Options, log *logger.Logger) *Extractor {
	if opts.DPI <= 0 {
		opts.DPI = DefaultOptions().DPI
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultOptions().MaxPages
	}
	return &Extractor{
		rasterizer: r,
		recognizer: rec,
		opts:       opts,
		logger:     log,
	}
}

// Extract reads a record card. Each page image is released before the next
// page is rendered and the document is closed on every path.
func (e *Extractor) Extract(ctx context.Context, data []byte) (models.PropertyRecord, error) {
	doc, err := e.rasterizer.Open(data)
	if err != nil {
		return models.PropertyRecord{}, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("Failed to close document", map[string]interface{}{
				"error": cerr.Error(),
			})
		}
	}()

	pages := doc.NumPages()
	if pages > e.opts.MaxPages {
		pages = e.opts.MaxPages
	}

	texts := make([]string, 2)
	for n := 0; n < pages; n++ {
		if err := ctx.Err(); err != nil {
			return models.PropertyRecord{}, err
		}
		text, err := e.recognizePage(ctx, doc, n)
		if err != nil {
			return models.PropertyRecord{}, err
		}
		if n < len(texts) {
			texts[n] = text
		}
	}

	rec := ParseText(texts[0], texts[1])

	e.logger.Info("Record card extracted", map[string]interface{}{
		"pages":          pages,
		"parcel_number":  rec.ParcelNumber,
		"area_code":      rec.AreaCode,
		"assessed_value": rec.AssessedValue,
		"history_rows":   len(rec.History),
	})
	return rec, nil
}

func (e *Extractor) recognizePage(ctx context.Context, doc Document, n int) (string, error) {
	img, err := doc.RenderPNG(n, e.opts.DPI)
	if err != nil {
		return "", fmt.Errorf("%w: render page %d: %v", ErrRecognitionFailed, n+1, err)
	}
	text, err := e.recognizer.Recognize(ctx, img)
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", ErrRecognitionFailed, n+1, err)
	}
	return text, nil
}
