package scanning

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/receipt-reader/internal/extraction"
)

// Tesseract implements the Recognizer interface with a local tesseract engine.
// It reports word boxes so the receipt layout can be rebuilt line by line.
type Tesseract struct {
	languages     []string
	minConfidence float64
}

// TesseractConfig holds Tesseract configuration
type TesseractConfig struct {
	// Languages are tesseract traineddata names, default "eng" and "ind"
	Languages []string
	// MinConfidence drops words tesseract is less sure about (0-100)
	MinConfidence float64
}

// NewTesseract creates a new Tesseract Recognizer instance
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	langs := make([]string, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		langs = []string{"eng", "ind"}
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 100 {
		return nil, fmt.Errorf("tesseract min confidence must be within 0-100, got %v", cfg.MinConfidence)
	}

	return &Tesseract{
		languages:     langs,
		minConfidence: cfg.MinConfidence,
	}, nil
}

// Name returns the backend name
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Run reads word boxes from the receipt image
func (t *Tesseract) Run(ctx context.Context, imageData []byte, contentType string) (*RawOutput, error) {
	pngData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}
	enhanced, err := enhanceForOCR(pngData)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return nil, fmt.Errorf("setting tesseract languages: %w", err)
	}
	if err := client.SetImageFromBytes(enhanced); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	return &RawOutput{Fragments: wordFragments(boxes, t.minConfidence)}, nil
}

// wordFragments converts tesseract word boxes to fragments positioned at their vertical centre
func wordFragments(boxes []gosseract.BoundingBox, minConfidence float64) []extraction.TextFragment {
	fragments := make([]extraction.TextFragment, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" || b.Confidence < minConfidence {
			continue
		}
		fragments = append(fragments, extraction.TextFragment{
			Text:   word,
			X:      float64(b.Box.Min.X),
			Y:      float64(b.Box.Min.Y+b.Box.Max.Y) / 2,
			Height: float64(b.Box.Dy()),
		})
	}
	return fragments
}

// Close is a no-op, a tesseract client lives for one Run
func (t *Tesseract) Close() error {
	return nil
}
