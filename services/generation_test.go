package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	resp     string
	err      error
	calls    int
	gotParts []ContentPart
}

func (s *stubClient) Complete(ctx context.Context, parts []ContentPart) (string, error) {
	s.calls++
	s.gotParts = parts
	return s.resp, s.err
}

const draftJSON = `{
	"title": "Rewire 3-bedroom house",
	"description": "Full rewire including switchboard upgrade",
	"lineItems": [
		{"description": "Labour", "quantity": 12, "unit": "hr", "unitPrice": 45, "total": 540, "category": "labour"},
		{"description": "Cable and fittings", "quantity": 4, "unit": "lot", "unitPrice": 95, "category": "materials"},
		{"description": "Callout", "quantity": 1, "unit": "visit", "unitPrice": 150, "category": "misc"}
	],
	"notes": "Assumes clear access to roof cavity"
}`

func TestGenerateEmptyInput(t *testing.T) {
	stub := &stubClient{}
	engine := &GenerationEngine{client: stub}

	_, err := engine.Generate(context.Background(), GenerateInput{Description: "   "})
	assert.ErrorIs(t, err, ErrNoInput)
	assert.Zero(t, stub.calls, "no completion call should be made for empty input")
}

func TestGeneratePricesDraft(t *testing.T) {
	stub := &stubClient{resp: draftJSON}
	engine := &GenerationEngine{client: stub}

	draft, err := engine.Generate(context.Background(), GenerateInput{
		Description: "rewire house",
		TaxRate:     0.10,
	})
	require.NoError(t, err)
	require.Len(t, draft.Items, 3)

	assert.Equal(t, "Rewire 3-bedroom house", draft.Title)
	assert.Equal(t, 1, stub.calls)

	// Authored total is trusted; the missing one is computed.
	assert.InDelta(t, 540.0, draft.Items[0].Total, 1e-9)
	assert.InDelta(t, 380.0, draft.Items[1].Total, 1e-9)

	// Unknown unit and category fall back to defaults.
	assert.Equal(t, "each", draft.Items[2].Unit)
	assert.Equal(t, "labour", draft.Items[2].Category)

	assert.InDelta(t, 1070.00, draft.Subtotal, 1e-9)
	assert.InDelta(t, 107.00, draft.Tax, 1e-9)
	assert.InDelta(t, 1177.00, draft.Total, 1e-9)
}

func TestGenerateDefaultTaxRate(t *testing.T) {
	stub := &stubClient{resp: `{"title":"Job","lineItems":[{"description":"Work","quantity":1,"unit":"each","unitPrice":100}]}`}
	engine := &GenerationEngine{client: stub}

	draft, err := engine.Generate(context.Background(), GenerateInput{Description: "job"})
	require.NoError(t, err)
	assert.InDelta(t, 100.00, draft.Subtotal, 1e-9)
	assert.InDelta(t, 10.00, draft.Tax, 1e-9)
	assert.InDelta(t, 110.00, draft.Total, 1e-9)
}

func TestGenerateExtractsWrappedJSON(t *testing.T) {
	for name, resp := range map[string]string{
		"code fence": "```json\n" + draftJSON + "\n```",
		"prose":      "Here is the quote you asked for:\n\n" + draftJSON + "\n\nLet me know if you need changes.",
	} {
		t.Run(name, func(t *testing.T) {
			engine := &GenerationEngine{client: &stubClient{resp: resp}}
			draft, err := engine.Generate(context.Background(), GenerateInput{Description: "job"})
			require.NoError(t, err)
			assert.Equal(t, "Rewire 3-bedroom house", draft.Title)
			assert.Len(t, draft.Items, 3)
		})
	}
}

func TestGenerateStringyNumbers(t *testing.T) {
	stub := &stubClient{resp: `{"title":"Job","lineItems":[{"description":"Cable","quantity":"2","unit":"m","unitPrice":"$1,045.50","category":"materials"}]}`}
	engine := &GenerationEngine{client: stub}

	draft, err := engine.Generate(context.Background(), GenerateInput{Description: "job"})
	require.NoError(t, err)
	require.Len(t, draft.Items, 1)
	assert.InDelta(t, 2.0, draft.Items[0].Quantity, 1e-9)
	assert.InDelta(t, 1045.50, draft.Items[0].UnitPrice, 1e-9)
	assert.InDelta(t, 2091.00, draft.Items[0].Total, 1e-9)
}

func TestGenerateNoJSONInResponse(t *testing.T) {
	engine := &GenerationEngine{client: &stubClient{resp: "Sorry, I cannot help with that."}}

	_, err := engine.Generate(context.Background(), GenerateInput{Description: "job"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Reason, "no JSON object")
}

func TestGenerateMissingLineItems(t *testing.T) {
	engine := &GenerationEngine{client: &stubClient{resp: `{"title":"Job","notes":"no items"}`}}

	_, err := engine.Generate(context.Background(), GenerateInput{Description: "job"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestGenerateCompletionFailure(t *testing.T) {
	engine := &GenerationEngine{client: &stubClient{err: errors.New("connection refused")}}

	_, err := engine.Generate(context.Background(), GenerateInput{Description: "job"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorContains(t, err, "connection refused")
}

func TestGenerateIncludesFileEvidence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Rewire 3-bedroom house, switchboard upgrade"), 0o644))

	stub := &stubClient{resp: draftJSON}
	engine := &GenerationEngine{client: stub}

	draft, err := engine.Generate(context.Background(), GenerateInput{
		Files: []StagedFile{{
			Path:         path,
			Filename:     "abc.txt",
			OriginalName: "notes.txt",
			MimeType:     "text/plain",
			Size:         43,
		}},
	})
	require.NoError(t, err)
	assert.False(t, draft.Truncated)

	require.Len(t, stub.gotParts, 2)
	assert.Equal(t, "text", stub.gotParts[1].Type)
	assert.Contains(t, stub.gotParts[1].Text, "switchboard upgrade")
}

func TestGenerateFlagsTruncatedEvidence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 6000)), 0o644))

	stub := &stubClient{resp: draftJSON}
	engine := &GenerationEngine{client: stub}

	draft, err := engine.Generate(context.Background(), GenerateInput{
		Files: []StagedFile{{Path: path, Filename: "big.txt", OriginalName: "big.txt", MimeType: "text/plain", Size: 6000}},
	})
	require.NoError(t, err)
	assert.True(t, draft.Truncated)
}

func TestExtractJSONObjectSkipsBracesInStrings(t *testing.T) {
	raw := `prefix {"title":"has } brace","lineItems":[]} suffix`
	got, ok := extractJSONObject(raw)
	require.True(t, ok)
	assert.Equal(t, `{"title":"has } brace","lineItems":[]}`, got)
}
