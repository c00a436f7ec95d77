package pdf

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotecraft-backend/models"
)

func sampleQuote() *models.Quote {
	return &models.Quote{
		ID:             uuid.New(),
		ClientName:     "Jane Citizen",
		ClientEmail:    "jane@example.com",
		ClientAddress:  "12 Example St, Sydney NSW",
		TradeType:      "electrical",
		JobDescription: "Full rewire including switchboard upgrade and new smoke alarms.",
		Status:         models.StatusDraft,
		Subtotal:       1070.00,
		Tax:            107.00,
		Total:          1177.00,
		ValidityDays:   30,
		Notes:          "Assumes clear access to roof cavity.",
		Template:       models.DefaultTemplate,
		BusinessSnapshot: models.BusinessSnapshot{
			BusinessName: "Spark Bros Electrical",
			ABN:          "12 345 678 901",
			Phone:        "0400 000 000",
			PaymentTerms: "50% deposit, balance on completion.",
			TaxRate:      0.10,
		},
		Items: []models.QuoteItem{
			{Description: "Labour", Quantity: 12, Unit: "hr", UnitPrice: 45, Total: 540, Category: models.CategoryLabour},
			{Description: "Cable and fittings (20m²)", Quantity: 4, Unit: "lot", UnitPrice: 95, Total: 380, Category: models.CategoryMaterials},
			{Description: "Callout", Quantity: 1, Unit: "each", UnitPrice: 150, Total: 150, Category: models.CategoryLabour},
		},
		CreatedAt: time.Now(),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, filename, err := Render(sampleQuote(), "clean-modern", t.TempDir())
	require.NoError(t, err)

	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF", "output should be a PDF stream")
	assert.Regexp(t, `^Quote-[0-9a-f]{8}\.pdf$`, filename)
}

func TestRenderEveryTemplate(t *testing.T) {
	for _, name := range TemplateNames() {
		t.Run(name, func(t *testing.T) {
			doc, err := render(sampleQuote(), name, t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, 1, doc.PageCount())
		})
	}
}

func TestRenderUnknownTemplateFallsBack(t *testing.T) {
	_, _, err := Render(sampleQuote(), "definitely-not-a-template", t.TempDir())
	assert.NoError(t, err)
}

func TestRenderLongItemListBreaksPages(t *testing.T) {
	quote := sampleQuote()
	quote.Items = nil
	for i := 0; i < 100; i++ {
		quote.Items = append(quote.Items, models.QuoteItem{
			Description: fmt.Sprintf("Line item %d", i+1),
			Quantity:    1,
			Unit:        "each",
			UnitPrice:   10,
			Total:       10,
		})
	}

	doc, err := render(quote, "clean-modern", t.TempDir())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc.PageCount(), 2, "100 rows should not fit on one page")
}

func TestRenderSkipsMissingAttachmentImages(t *testing.T) {
	quote := sampleQuote()
	quote.Attachments = []models.QuoteAttachment{
		{QuoteID: quote.ID, Filename: "gone.jpg", OriginalName: "site.jpg", MimeType: "image/jpeg"},
	}

	data, _, err := Render(quote, "photo-gallery", t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderEmptyQuote(t *testing.T) {
	quote := &models.Quote{ID: uuid.New(), ValidityDays: 30, CreatedAt: time.Now()}
	data, _, err := Render(quote, "", t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
