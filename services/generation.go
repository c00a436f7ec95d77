// services/generation.go
package services

import (
	"context"
	"encoding/json"
	"strings"

	"quotecraft-backend/models"
	"quotecraft-backend/utils"
)

// Generation request limits, enforced again at the HTTP boundary.
const (
	MaxUploadFiles = 10
	MaxUploadBytes = 10 << 20
)

// completionClient is the one suspension point of the engine; satisfied by
// LLMClient and stubbed in tests.
type completionClient interface {
	Complete(ctx context.Context, parts []ContentPart) (string, error)
}

// GenerateInput is the boundary contract for a generation request.
type GenerateInput struct {
	Description string
	Files       []StagedFile
	TaxRate     float64
}

// DraftItem is one proposed line item. Totals authored by the model are
// trusted; missing totals are computed from quantity and unit price.
type DraftItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
	Category    string  `json:"category"`
}

// Draft is the structured output of the engine prior to persistence.
type Draft struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Items       []DraftItem  `json:"items"`
	Notes       string       `json:"notes"`
	Subtotal    float64      `json:"subtotal"`
	Tax         float64      `json:"tax"`
	Total       float64      `json:"total"`
	Truncated   bool         `json:"truncated"`
	Files       []StagedFile `json:"-"`
}

// GenerationEngine turns free text and uploaded evidence into a priced draft.
// It performs no persistence; saving the draft is the caller's concern.
type GenerationEngine struct {
	client completionClient
}

func NewGenerationEngine() *GenerationEngine {
	return &GenerationEngine{client: NewLLMClient()}
}

// Generate runs the full pipeline: validate input, assemble evidence, one
// completion round trip, extract and validate the JSON payload, price it.
func (e *GenerationEngine) Generate(ctx context.Context, input GenerateInput) (*Draft, error) {
	if strings.TrimSpace(input.Description) == "" && len(input.Files) == 0 {
		return nil, ErrNoInput
	}

	parts, truncated := buildEvidence(input.Description, input.Files)

	raw, err := e.client.Complete(ctx, parts)
	if err != nil {
		return nil, &GenerationError{Reason: "completion request failed", Err: err}
	}

	payload, err := parseDraftPayload(raw)
	if err != nil {
		return nil, err
	}

	taxRate := input.TaxRate
	if taxRate == 0 {
		taxRate = models.DefaultTaxRate
	}

	draft := &Draft{
		Title:       payload.Title,
		Description: payload.Description,
		Notes:       payload.Notes,
		Truncated:   truncated,
		Files:       input.Files,
	}
	if draft.Title == "" {
		draft.Title = "Untitled Job"
	}
	if draft.Description == "" {
		draft.Description = input.Description
	}

	lineTotals := make([]float64, 0, len(payload.LineItems))
	for _, item := range payload.LineItems {
		di := DraftItem{
			Description: item.Description,
			Quantity:    float64(item.Quantity),
			Unit:        item.Unit,
			UnitPrice:   float64(item.UnitPrice),
			Category:    item.Category,
		}
		if !models.ValidUnit(di.Unit) {
			di.Unit = "each"
		}
		if di.Category != models.CategoryLabour && di.Category != models.CategoryMaterials {
			di.Category = models.CategoryLabour
		}
		if item.Total != nil {
			di.Total = float64(*item.Total)
		} else {
			di.Total = utils.LineTotal(di.Quantity, di.UnitPrice)
		}
		lineTotals = append(lineTotals, di.Total)
		draft.Items = append(draft.Items, di)
	}

	draft.Subtotal, draft.Tax, draft.Total = utils.QuoteTotals(lineTotals, taxRate)
	return draft, nil
}

type draftPayload struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	LineItems   []payloadItem `json:"lineItems"`
	Notes       string        `json:"notes"`
}

type payloadItem struct {
	Description string     `json:"description"`
	Quantity    FlexFloat  `json:"quantity"`
	Unit        string     `json:"unit"`
	UnitPrice   FlexFloat  `json:"unitPrice"`
	Total       *FlexFloat `json:"total"`
	Category    string     `json:"category"`
}

// parseDraftPayload extracts the first well-formed JSON object from the raw
// response and validates its shape. The model is instructed to return bare
// JSON but may wrap it in prose or code fences.
func parseDraftPayload(raw string) (*draftPayload, error) {
	candidate, ok := extractJSONObject(raw)
	if !ok {
		return nil, &GenerationError{Reason: "no JSON object found in response"}
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, &GenerationError{Reason: "response JSON failed validation", Err: err}
	}
	if payload.LineItems == nil {
		return nil, &GenerationError{Reason: "response JSON missing lineItems"}
	}
	return &payload, nil
}

// extractJSONObject scans for the first balanced, parseable JSON object.
func extractJSONObject(s string) (string, bool) {
	s = stripCodeFences(s)

	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}

		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			ch := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					// Unbalanced or malformed; try the next opening brace.
					i = len(s)
				}
			}
		}
	}
	return "", false
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return s
}
