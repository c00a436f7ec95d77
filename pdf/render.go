// pdf/render.go
package pdf

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"quotecraft-backend/models"
)

// A4 in points, with the footer pinned near the page bottom.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	footerY    = 780
)

// RenderError is a fatal I/O fault in the document engine. Missing attachment
// images and unknown template ids are absorbed, never surfaced.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Render lays out the quote with the named template and returns the document
// bytes and a suggested filename. The document is built fully in memory so a
// partial stream is never handed to the caller.
func Render(quote *models.Quote, templateID, uploadsDir string) ([]byte, string, error) {
	doc, err := render(quote, templateID, uploadsDir)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, "", &RenderError{Op: "output", Err: err}
	}

	filename := fmt.Sprintf("Quote-%s.pdf", quote.ID.String()[:8])
	return buf.Bytes(), filename, nil
}

// render builds the document; split out so tests can inspect page counts.
func render(quote *models.Quote, templateID, uploadsDir string) (*gofpdf.Fpdf, error) {
	if templateID == "" {
		templateID = quote.Template
	}
	cfg := Config(templateID)

	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	r := &renderer{
		doc: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
		cfg: cfg,
		cur: newCursor(doc, cfg.Margin, footerY-20),
		m:   cfg.Margin,
		pw:  pageWidth - cfg.Margin*2,
	}

	r.drawHeader(quote)
	r.drawTitleBlock(quote)
	r.drawClient(quote)
	r.drawJobDescription(quote)
	r.drawPhotos(quote, templateID, uploadsDir)
	r.drawItemTable(quote)
	r.drawTotals(quote)
	r.drawNotes(quote)
	r.drawFooter()

	if doc.Err() {
		return nil, &RenderError{Op: "layout", Err: doc.Error()}
	}
	return doc, nil
}

type renderer struct {
	doc *gofpdf.Fpdf
	tr  func(string) string
	cfg TemplateConfig
	cur *cursor
	m   float64
	pw  float64
}

func (r *renderer) setTextColor(hex string) {
	red, green, blue := hexRGB(hex)
	r.doc.SetTextColor(red, green, blue)
}

func (r *renderer) setFillColor(hex string) {
	red, green, blue := hexRGB(hex)
	r.doc.SetFillColor(red, green, blue)
}

func (r *renderer) cellAt(x, y, w, h float64, txt, align string) {
	r.doc.SetXY(x, y)
	r.doc.CellFormat(w, h, r.tr(txt), "", 0, align, false, 0, "")
}

// wrappedText draws txt wrapped to width w at the cursor, advancing past it.
func (r *renderer) wrappedText(w, lineHeight float64, txt string) {
	lines := r.doc.SplitLines([]byte(r.tr(txt)), w)
	for _, line := range lines {
		r.cur.ensureSpace(lineHeight)
		r.doc.SetXY(r.m, r.cur.y)
		r.doc.CellFormat(w, lineHeight, string(line), "", 0, "L", false, 0, "")
		r.cur.advance(lineHeight)
	}
}

func (r *renderer) drawHeader(quote *models.Quote) {
	profile := quote.BusinessSnapshot

	if r.cfg.HeaderBg != "" {
		r.setFillColor(r.cfg.HeaderBg)
		r.doc.Rect(0, 0, pageWidth, r.cfg.HeaderHeight, "F")
	}

	r.doc.SetFont("Helvetica", "B", r.cfg.TitleSize)
	r.setTextColor(r.cfg.TitleColor)
	name := profile.BusinessName
	if name == "" {
		name = "QuoteCraft"
	}
	r.cellAt(r.m, r.m, r.pw, r.cfg.TitleSize, name, "L")

	r.doc.SetFont("Helvetica", "", 9)
	r.setTextColor(r.cfg.DimColor)
	r.cur.y = r.m + r.cfg.TitleSize + 8
	for _, line := range []string{
		prefixed("ABN: ", profile.ABN),
		prefixed("Licence: ", profile.LicenceNumber),
		prefixed("Ph: ", profile.Phone),
		profile.Email,
		profile.Address,
	} {
		if line == "" {
			continue
		}
		r.cellAt(r.m, r.cur.y, r.pw, 10, line, "L")
		r.cur.advance(13)
	}
}

func (r *renderer) drawTitleBlock(quote *models.Quote) {
	r.cur.advance(15)
	date := quote.CreatedAt.Format("02/01/2006")

	if r.cfg.AccentBg != "" {
		r.setFillColor(r.cfg.AccentBg)
		r.doc.Rect(r.m, r.cur.y, r.pw, 30, "F")

		r.doc.SetFont("Helvetica", "B", 14)
		r.setTextColor("#ffffff")
		r.cellAt(r.m+10, r.cur.y+8, 60, 14, "QUOTE", "L")

		r.doc.SetFont("Helvetica", "", 9)
		r.cellAt(r.m+80, r.cur.y+10, 100, 10, "#"+quote.ShortID(), "L")
		r.cellAt(r.m+r.pw-110, r.cur.y+10, 100, 10, "Date: "+date, "R")
		r.cur.advance(40)
		return
	}

	r.doc.SetFont("Helvetica", "B", 16)
	r.setTextColor(r.cfg.TextColor)
	r.cellAt(r.m, r.cur.y, 120, 16, "QUOTE", "L")
	r.cur.advance(22)

	r.doc.SetFont("Helvetica", "", 9)
	r.setTextColor(r.cfg.DimColor)
	r.cellAt(r.m, r.cur.y, 200, 10, "Quote #: "+quote.ShortID(), "L")
	r.cellAt(300, r.cur.y, 200, 10, "Date: "+date, "L")
	r.cur.advance(13)
	r.cellAt(r.m, r.cur.y, 200, 10, fmt.Sprintf("Valid for: %d days", quote.ValidityDays), "L")
	r.cur.advance(20)
}

func (r *renderer) drawClient(quote *models.Quote) {
	r.doc.SetFont("Helvetica", "B", 10)
	r.setTextColor(r.cfg.TextColor)
	r.cellAt(r.m, r.cur.y, 200, 12, "Client:", "L")
	r.cur.advance(14)

	r.doc.SetFont("Helvetica", "", 9)
	r.setTextColor(r.cfg.DimColor)
	for _, line := range []string{quote.ClientName, quote.ClientEmail, quote.ClientPhone, quote.ClientAddress} {
		if line == "" {
			continue
		}
		r.cellAt(r.m, r.cur.y, r.pw, 10, line, "L")
		r.cur.advance(13)
	}
}

func (r *renderer) drawJobDescription(quote *models.Quote) {
	if quote.JobDescription == "" {
		return
	}
	r.cur.advance(8)
	r.doc.SetFont("Helvetica", "B", 10)
	r.setTextColor(r.cfg.TextColor)
	r.cellAt(r.m, r.cur.y, 200, 12, "Job Description:", "L")
	r.cur.advance(14)

	r.doc.SetFont("Helvetica", "", 9)
	r.setTextColor(r.cfg.DimColor)
	r.wrappedText(r.pw, 11, quote.JobDescription)
	r.cur.advance(15)
}

// drawPhotos lays out image attachments in a left-to-right grid. The compact
// template skips photos entirely; photo-gallery uses larger thumbnails.
// Files missing from disk are skipped, never fatal.
func (r *renderer) drawPhotos(quote *models.Quote, templateID, uploadsDir string) {
	if templateID == "compact" {
		return
	}

	var images []models.QuoteAttachment
	for _, att := range quote.Attachments {
		if att.IsImage() {
			images = append(images, att)
		}
	}
	if len(images) == 0 {
		return
	}

	photoSize := 80.0
	if templateID == "photo-gallery" {
		photoSize = 150.0
	}
	cols := int(r.pw / (photoSize + 10))
	if cols < 1 {
		cols = 1
	}

	col := 0
	drawn := 0
	for _, att := range images {
		imgPath := filepath.Join(uploadsDir, quote.ID.String(), att.Filename)
		if _, err := os.Stat(imgPath); err != nil {
			log.Printf("Skipping missing attachment image %s: %v", att.Filename, err)
			continue
		}

		if r.cur.ensureSpace(photoSize + 10) {
			col = 0
		}
		x := r.m + float64(col)*(photoSize+10)
		r.doc.ImageOptions(imgPath, x, r.cur.y, photoSize, photoSize, false,
			gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		if r.doc.Err() {
			log.Printf("Image embed error for %s: %v", att.Filename, r.doc.Error())
			r.doc.ClearError()
			continue
		}

		drawn++
		col++
		if col >= cols {
			col = 0
			r.cur.advance(photoSize + 10)
		}
	}
	if col > 0 {
		r.cur.advance(photoSize + 10)
	}
	if drawn > 0 {
		r.cur.advance(5)
	}
}

// Table column offsets from the left margin: description, qty, unit, rate, total.
var colOffsets = [5]float64{0, 230, 270, 330, 390}
var colWidths = [5]float64{220, 35, 55, 55, 55}

func (r *renderer) drawItemTable(quote *models.Quote) {
	r.cur.ensureSpace(120)

	r.setFillColor(r.cfg.TableHeaderBg)
	r.doc.Rect(r.m, r.cur.y, r.pw, 18, "F")
	r.doc.SetFont("Helvetica", "B", 8)
	r.setTextColor("#ffffff")
	for i, label := range [5]string{"Description", "Qty", "Unit", "Rate", "Total"} {
		r.cellAt(r.m+colOffsets[i]+5, r.cur.y+4, colWidths[i], 10, label, "L")
	}
	r.cur.advance(18)

	r.doc.SetFont("Helvetica", "", 8)
	for i, item := range quote.Items {
		// Whole rows only; break before drawing if the row won't fit.
		r.cur.ensureSpace(16)

		if i%2 == 0 {
			r.setFillColor(r.cfg.RowEven)
		} else {
			r.setFillColor(r.cfg.RowOdd)
		}
		r.doc.Rect(r.m, r.cur.y, r.pw, 16, "F")

		r.setTextColor(r.cfg.TextColor)
		cells := [5]string{
			item.Description,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			item.Unit,
			fmt.Sprintf("$%.2f", item.UnitPrice),
			fmt.Sprintf("$%.2f", item.Total),
		}
		for c, txt := range cells {
			r.cellAt(r.m+colOffsets[c]+5, r.cur.y+3, colWidths[c], 10, txt, "L")
		}
		r.cur.advance(16)
	}
}

func (r *renderer) drawTotals(quote *models.Quote) {
	r.cur.advance(10)
	r.cur.ensureSpace(60)

	rate := quote.BusinessSnapshot.TaxRate
	if rate == 0 {
		rate = models.DefaultTaxRate
	}

	labelX := 380.0
	valueX := 480.0

	r.doc.SetFont("Helvetica", "", 10)
	r.setTextColor(r.cfg.TextColor)
	r.cellAt(labelX, r.cur.y, 95, 12, "Subtotal (ex GST):", "L")
	r.cellAt(valueX, r.cur.y, 65, 12, fmt.Sprintf("$%.2f", quote.Subtotal), "R")
	r.cur.advance(16)
	r.cellAt(labelX, r.cur.y, 95, 12, fmt.Sprintf("GST (%.0f%%):", rate*100), "L")
	r.cellAt(valueX, r.cur.y, 65, 12, fmt.Sprintf("$%.2f", quote.Tax), "R")
	r.cur.advance(16)

	r.doc.SetFont("Helvetica", "B", 12)
	if r.cfg.AccentColor != "" {
		r.setTextColor(r.cfg.AccentColor)
	}
	r.cellAt(labelX, r.cur.y, 95, 14, "Total (inc GST):", "L")
	r.cellAt(valueX, r.cur.y, 65, 14, fmt.Sprintf("$%.2f", quote.Total), "R")
	r.cur.advance(25)
}

func (r *renderer) drawNotes(quote *models.Quote) {
	if quote.Notes != "" {
		r.cur.ensureSpace(60)
		r.doc.SetFont("Helvetica", "B", 9)
		r.setTextColor(r.cfg.TextColor)
		r.cellAt(r.m, r.cur.y, 200, 11, "Notes:", "L")
		r.cur.advance(13)

		r.doc.SetFont("Helvetica", "", 8)
		r.setTextColor(r.cfg.DimColor)
		r.wrappedText(r.pw, 10, quote.Notes)
		r.cur.advance(15)
	}

	if terms := quote.BusinessSnapshot.PaymentTerms; terms != "" {
		r.cur.ensureSpace(40)
		r.doc.SetFont("Helvetica", "B", 9)
		r.setTextColor(r.cfg.TextColor)
		r.cellAt(r.m, r.cur.y, 200, 11, "Payment Terms:", "L")
		r.cur.advance(13)

		r.doc.SetFont("Helvetica", "", 8)
		r.setTextColor(r.cfg.DimColor)
		r.wrappedText(r.pw, 10, terms)
		r.cur.advance(15)
	}
}

func (r *renderer) drawFooter() {
	r.doc.SetFont("Helvetica", "", 7)
	r.setTextColor(r.cfg.DimColor)
	r.cellAt(r.m, footerY, r.pw, 9, "Generated by QuoteCraft — quotecraft.com.au", "C")
}

func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}

func hexRGB(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff)
}
