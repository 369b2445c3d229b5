package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombor/receipt-reader/internal/extraction"
)

// Reader runs a Recognizer and turns its output into structured receipt data
type Reader struct {
	recognizer    Recognizer
	extractor     *extraction.Extractor
	lineThreshold float64
}

// NewReader creates a Reader. A lineThreshold of 0 derives the line grouping
// distance from the fragment heights of each image.
func NewReader(recognizer Recognizer, lineThreshold float64) *Reader {
	return NewReaderWithExtractor(recognizer, lineThreshold, extraction.NewExtractor())
}

// NewReaderWithExtractor creates a Reader with a custom extractor for testing
func NewReaderWithExtractor(recognizer Recognizer, lineThreshold float64, extractor *extraction.Extractor) *Reader {
	return &Reader{
		recognizer:    recognizer,
		extractor:     extractor,
		lineThreshold: lineThreshold,
	}
}

// Backend returns the name of the underlying recognizer
func (r *Reader) Backend() string {
	return r.recognizer.Name()
}

// Read recognizes the image and extracts items and total
func (r *Reader) Read(ctx context.Context, imageData []byte, contentType string) (*extraction.ReceiptResult, error) {
	raw, err := r.recognizer.Run(ctx, imageData, contentType)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", r.recognizer.Name(), err)
	}
	if raw == nil {
		return nil, fmt.Errorf("running %s: empty output", r.recognizer.Name())
	}

	src := r.source(raw)
	result := r.extractor.Extract(src)
	if result.Failed() {
		slog.Warn("No receipt items found", "backend", r.recognizer.Name())
	}
	return &result, nil
}

// source picks the extraction input matching the backend output
func (r *Reader) source(raw *RawOutput) extraction.Source {
	if !raw.HasLayout() {
		slog.Debug("Raw backend output", "backend", r.recognizer.Name(), "text", raw.Text)
		return extraction.FreeText(raw.Text)
	}

	threshold := r.lineThreshold
	if threshold <= 0 {
		threshold = extraction.DefaultThreshold(raw.Fragments)
	}
	lines := extraction.ReconstructLines(raw.Fragments, threshold)
	slog.Debug("Reconstructed lines",
		"backend", r.recognizer.Name(),
		"fragments", len(raw.Fragments),
		"threshold", threshold,
		"lines", strings.Join(lines, "\n"),
	)
	return extraction.Lines(lines)
}
