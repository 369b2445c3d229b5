package scanning

import (
	"context"

	"github.com/zombor/receipt-reader/internal/extraction"
)

// RawOutput is what a recognition backend read from an image.
// Backends that expose layout fill Fragments; the others fill Text.
type RawOutput struct {
	Text      string                    `json:"text,omitempty"`
	Fragments []extraction.TextFragment `json:"fragments,omitempty"`
}

// HasLayout reports whether the output carries positioned fragments
func (o *RawOutput) HasLayout() bool {
	return o.Fragments != nil
}

// Recognizer defines a recognition backend that turns an image into text
type Recognizer interface {
	// Run reads the image and returns the backend's raw output
	Run(ctx context.Context, imageData []byte, contentType string) (*RawOutput, error)
	// Name identifies the backend in logs and stored scans
	Name() string
	// Close releases backend resources
	Close() error
}
