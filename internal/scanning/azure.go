package scanning

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"

	"github.com/zombor/receipt-reader/internal/extraction"
)

// Azure implements the Recognizer interface using Azure Computer Vision printed-text OCR
type Azure struct {
	client *computervision.BaseClient
}

// NewAzure creates a new Azure Recognizer instance
func NewAzure(endpoint, apiKey string) (*Azure, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("azure api key is required")
	}

	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)

	return &Azure{client: &client}, nil
}

// Name returns the backend name
func (a *Azure) Name() string {
	return "azure"
}

// Run reads word boxes from the receipt image
func (a *Azure) Run(ctx context.Context, imageData []byte, contentType string) (*RawOutput, error) {
	pngData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(pngData)),
		computervision.OcrLanguages("unk"),
	)
	if err != nil {
		return nil, fmt.Errorf("recognizing printed text: %w", err)
	}

	return &RawOutput{Fragments: azureFragments(result)}, nil
}

// azureFragments flattens regions/lines/words into word fragments
func azureFragments(result computervision.OcrResult) []extraction.TextFragment {
	fragments := make([]extraction.TextFragment, 0)
	if result.Regions == nil {
		return fragments
	}
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			for _, word := range *line.Words {
				if word.Text == nil || word.BoundingBox == nil {
					continue
				}
				x, y, _, h, ok := parseAzureBox(*word.BoundingBox)
				if !ok {
					continue
				}
				fragments = append(fragments, extraction.TextFragment{
					Text:   *word.Text,
					X:      x,
					Y:      y + h/2,
					Height: h,
				})
			}
		}
	}
	return fragments
}

// parseAzureBox parses the "left,top,width,height" bounding box string
func parseAzureBox(box string) (x, y, w, h float64, ok bool) {
	parts := strings.Split(box, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, false
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], true
}

// Close is a no-op for the REST client
func (a *Azure) Close() error {
	return nil
}
