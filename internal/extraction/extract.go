package extraction

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// FailedItemName names the placeholder item returned when no item could be read
const FailedItemName = "OCR failed to read items"

var (
	// name characters followed by a numeral that carries at least one separator;
	// names never span a line break
	reItem = regexp.MustCompile(`([\p{L}0-9 \t\-().&]+?)(\d+[.,][\d.,]+)`)

	reTrailingQty = regexp.MustCompile(`\s+\d+$`)
	reLeadingQty  = regexp.MustCompile(`^\d+\s+`)

	noiseKeywords = []string{
		"sub", "total", "tax", "pajak", "service", "layanan", "discount",
		"diskon", "cash", "kembali", "disc", "pax", "qty",
	}
)

// Item is one purchased line on a receipt
type Item struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	TotalPrice float64 `json:"total_price"`
}

// ReceiptResult is the structured content of a receipt
type ReceiptResult struct {
	Items map[string]Item `json:"items"`
	Total float64         `json:"total"`

	order []string
}

// ItemList returns the items in the order they were read from the receipt
func (r *ReceiptResult) ItemList() []Item {
	list := make([]Item, 0, len(r.Items))
	if len(r.order) == len(r.Items) {
		for _, id := range r.order {
			list = append(list, r.Items[id])
		}
		return list
	}
	for _, it := range r.Items {
		list = append(list, it)
	}
	return list
}

// Failed reports whether the result only holds the placeholder item
func (r *ReceiptResult) Failed() bool {
	if len(r.Items) != 1 {
		return false
	}
	for _, it := range r.Items {
		return it.Name == FailedItemName && it.TotalPrice == 0
	}
	return false
}

type sourceKind int

const (
	kindFreeText sourceKind = iota
	kindLines
)

// Source is the text handed to the extractor: either a free-text blob or
// reconstructed lines in reading order.
type Source struct {
	kind  sourceKind
	text  string
	lines []string
}

// FreeText wraps the output of a backend that does not expose layout
func FreeText(text string) Source {
	return Source{kind: kindFreeText, text: text}
}

// Lines wraps lines produced by ReconstructLines (or any top-to-bottom line list)
func Lines(lines []string) Source {
	return Source{kind: kindLines, lines: lines}
}

// IsLines reports whether the source carries reconstructed lines
func (s Source) IsLines() bool {
	return s.kind == kindLines
}

// IDGenerator generates item identifiers
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Extractor turns OCR text into a ReceiptResult
type Extractor struct {
	idGenerator IDGenerator
}

// NewExtractor creates an Extractor that assigns random UUIDs to items
func NewExtractor() *Extractor {
	return &Extractor{idGenerator: uuidGenerator{}}
}

// NewExtractorWithIDs creates an Extractor with a custom ID generator for testing
func NewExtractorWithIDs(idGen IDGenerator) *Extractor {
	return &Extractor{idGenerator: idGen}
}

var defaultExtractor = NewExtractor()

// Extract runs the default Extractor over src
func Extract(src Source) ReceiptResult {
	return defaultExtractor.Extract(src)
}

type match struct {
	name  string
	price string
}

// Extract classifies every name/price match in src as an item, the grand total or noise
func (e *Extractor) Extract(src Source) ReceiptResult {
	var (
		matches []match
		minName = 2
	)

	if src.IsLines() {
		minName = 3
		for _, line := range src.lines {
			if m := reItem.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				matches = append(matches, match{name: m[1], price: m[2]})
			}
		}
	} else {
		for _, m := range reItem.FindAllStringSubmatch(src.text, -1) {
			matches = append(matches, match{name: m[1], price: m[2]})
		}
	}

	var (
		items         []Item
		detectedTotal float64
	)
	for _, m := range matches {
		name := strings.Trim(strings.TrimSpace(m.name), ".,- ")
		price := ParsePrice(m.price)
		if len(name) < minName || price == 0 {
			continue
		}

		lower := strings.ToLower(name)
		if strings.Contains(lower, "total") && !strings.Contains(lower, "sub") {
			detectedTotal = price
			continue
		}
		if isNoise(lower) {
			continue
		}

		name = reTrailingQty.ReplaceAllString(name, "")
		if src.IsLines() {
			name = reLeadingQty.ReplaceAllString(name, "")
		}
		items = append(items, Item{Name: name, Count: 1, TotalPrice: price})
	}

	if detectedTotal == 0 && len(items) > 0 {
		for _, it := range items {
			detectedTotal += it.TotalPrice
		}
	}

	// nothing readable: the total is dropped along with the items
	if len(items) == 0 {
		items = []Item{{Name: FailedItemName, Count: 1, TotalPrice: 0}}
		detectedTotal = 0
	}

	result := ReceiptResult{
		Items: make(map[string]Item, len(items)),
		Total: detectedTotal,
		order: make([]string, 0, len(items)),
	}
	for _, it := range items {
		it.ID = e.idGenerator.Generate()
		result.Items[it.ID] = it
		result.order = append(result.order, it.ID)
	}
	return result
}

func isNoise(lowerName string) bool {
	for _, k := range noiseKeywords {
		if strings.Contains(lowerName, k) {
			return true
		}
	}
	return false
}
