package receipt

import (
	"time"

	"github.com/zombor/receipt-reader/internal/extraction"
)

// Scan is a stored receipt reading: the uploaded file and what was extracted from it
type Scan struct {
	ID          string            `json:"id"`
	Filename    string            `json:"filename"`
	ContentType string            `json:"content_type"`
	Backend     string            `json:"backend"` // recognizer that read the image
	Items       []extraction.Item `json:"items"`   // in reading order
	Total       float64           `json:"total"`
	Failed      bool              `json:"failed"` // no item could be read
	CreatedAt   time.Time         `json:"created_at"`
}

// ItemMap returns the items keyed by item ID
func (s *Scan) ItemMap() map[string]extraction.Item {
	m := make(map[string]extraction.Item, len(s.Items))
	for _, it := range s.Items {
		m[it.ID] = it
	}
	return m
}
