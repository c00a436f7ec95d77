// services/evidence.go
package services

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	fitz "github.com/gen2brain/go-fitz"
)

// evidenceCharBudget bounds how much extracted document text goes into the
// prompt per file.
const evidenceCharBudget = 5000

// StagedFile is an upload sitting in the temp staging directory.
type StagedFile struct {
	Path         string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
}

func (f StagedFile) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}

// buildEvidence normalises the description and uploads into ordered content
// parts: the instruction text first, then one part per usable file. Returns
// whether any document text was cut to fit the budget.
func buildEvidence(description string, files []StagedFile) ([]ContentPart, bool) {
	parts := []ContentPart{{Type: "text", Text: buildPrompt(description)}}
	truncated := false

	for _, file := range files {
		switch {
		case file.IsImage():
			data, err := os.ReadFile(file.Path)
			if err != nil {
				log.Printf("Skipping unreadable upload %s: %v", file.OriginalName, err)
				continue
			}
			parts = append(parts, ContentPart{
				Type: "image_url",
				ImageURL: &ImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", file.MimeType, base64.StdEncoding.EncodeToString(data)),
					Detail: "high",
				},
			})

		case file.MimeType == "application/pdf":
			text, err := extractPDFText(file.Path)
			if err != nil {
				log.Printf("PDF parse error for %s: %v", file.OriginalName, err)
				continue
			}
			text, cut := truncate(text, evidenceCharBudget)
			truncated = truncated || cut
			parts = append(parts, ContentPart{
				Type: "text",
				Text: fmt.Sprintf("[Content from PDF %q]:\n%s", file.OriginalName, text),
			})

		default:
			data, err := os.ReadFile(file.Path)
			if err != nil || !utf8.Valid(data) {
				// Binary or unreadable, nothing to feed the prompt.
				continue
			}
			text, cut := truncate(string(data), evidenceCharBudget)
			truncated = truncated || cut
			parts = append(parts, ContentPart{
				Type: "text",
				Text: fmt.Sprintf("[Content from %q]:\n%s", file.OriginalName, text),
			})
		}
	}

	return parts, truncated
}

func extractPDFText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		if sb.Len() > evidenceCharBudget {
			break
		}
	}
	return sb.String(), nil
}

func truncate(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}
	// Cut on a rune boundary.
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}

func buildPrompt(description string) string {
	if description == "" {
		description = "No description provided"
	}
	return fmt.Sprintf(`You are an expert Australian trade quoting assistant. Analyze all provided information (images, documents, text) and generate a complete quote.

User description: %s

Based on ALL the information provided (images showing job scope, any documents/emails, and the text description), generate a structured quote.

Return ONLY valid JSON with this structure:
{
  "title": "Brief job title",
  "description": "Detailed job description based on all inputs",
  "lineItems": [
    { "description": "string", "quantity": number, "unit": "each|m|m²|hr|day|lot|kg|L", "unitPrice": number, "total": number, "category": "labour|materials" }
  ],
  "notes": "Any important notes, assumptions, or recommendations"
}

All prices in AUD ex-GST. Use realistic Australian trade pricing. Be specific with descriptions. Include both labour and materials items.`, description)
}
