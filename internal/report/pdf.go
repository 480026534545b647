// Package report renders the patient summary as a PDF document. Its contract
// with the rest of the system is plain text: a key-value header plus ordered
// bullet sections.
package report

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
)

// Field is one row of the patient summary header.
type Field struct {
	Label string
	Value string
}

// Section is a heading with word-wrapped bullet lines.
type Section struct {
	Heading string
	Bullets []string
}

// Document is the layout-independent report content.
type Document struct {
	Title     string
	Generated time.Time
	Fields    []Field
	Sections  []Section
}

const (
	pageMargin   = 18.0
	labelWidth   = 55.0
	lineHeight   = 6.0
	bulletIndent = 5.0
)

// Render lays the document out on letter pages and returns the PDF bytes.
func Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, doc.Generated.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	for _, f := range doc.Fields {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(labelWidth, lineHeight, f.Label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, lineHeight, f.Value, "", "L", false)
	}

	for _, s := range doc.Sections {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, s.Heading, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, b := range s.Bullets {
			pdf.SetX(pageMargin + bulletIndent)
			pdf.MultiCell(0, lineHeight, "- "+b, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
