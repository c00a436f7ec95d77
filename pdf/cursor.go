// pdf/cursor.go
package pdf

import "github.com/phpdave11/gofpdf"

// cursor owns the vertical layout position and the page-break policy. Drawing
// code asks for space instead of checking thresholds by hand.
type cursor struct {
	doc    *gofpdf.Fpdf
	y      float64
	top    float64
	bottom float64
}

func newCursor(doc *gofpdf.Fpdf, margin, bottom float64) *cursor {
	return &cursor{doc: doc, y: margin, top: margin, bottom: bottom}
}

// ensureSpace starts a new page when h points would not fit above the
// printable bottom. Reports whether a page break happened.
func (cu *cursor) ensureSpace(h float64) bool {
	if cu.y+h > cu.bottom {
		cu.doc.AddPage()
		cu.y = cu.top
		return true
	}
	return false
}

func (cu *cursor) advance(h float64) {
	cu.y += h
}
