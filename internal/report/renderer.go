package report

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const title = "Medical Report Analysis"

// Renderer writes analysis text into a simple auto-flowing PDF.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces a PDF at path: a centered bold title followed by the
// wrapped body text. Characters outside latin-1 are replaced with a
// placeholder rather than failing — the rendering is best-effort.
func (r *Renderer) Render(text, path string) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Arial", "B", 16)
	doc.SetTextColor(0, 70, 140)
	doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	doc.Ln(5)
	doc.SetFont("Arial", "", 11)
	doc.SetTextColor(0, 0, 0)
	doc.MultiCell(0, 6, toLatin1(text), "", "L", false)

	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// toLatin1 maps the string onto single-byte latin-1, substituting '?'
// for anything the PDF core fonts cannot encode.
func toLatin1(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > 0xFF {
			b.WriteByte('?')
		} else {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
