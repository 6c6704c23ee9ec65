package label

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFStyle selects one of the two document layouts.
type PDFStyle string

const (
	// StyleBanded paints three horizontal color bands with the text
	// runs placed inside them.
	StyleBanded PDFStyle = "banded"
	// StylePlain centers the same text runs on a white page.
	StylePlain PDFStyle = "plain"
)

// PDFRenderer draws labels as vector text at fixed coordinates and
// emits a single multi-page PDF.
type PDFRenderer struct {
	style PDFStyle
}

func NewPDFRenderer(style PDFStyle) (*PDFRenderer, error) {
	switch style {
	case StyleBanded, StylePlain:
		return &PDFRenderer{style: style}, nil
	default:
		return nil, fmt.Errorf("unknown label style %q", style)
	}
}

func (r *PDFRenderer) Render(ctx context.Context, models []Model) (*Document, error) {
	if len(models) == 0 {
		return nil, ErrEmptySelection
	}

	// The custom size is already landscape; "L" would swap the
	// dimensions.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: PageWidthMM, Ht: PageHeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		switch r.style {
		case StyleBanded:
			drawBanded(pdf, m)
		case StylePlain:
			drawPlain(pdf, m)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}
	return &Document{
		ContentType: "application/pdf",
		Filename:    "labels.pdf",
		Data:        buf.Bytes(),
	}, nil
}

// drawBanded lays out the label as three horizontal bands: resident
// header, medication body, footer with dates and pseudo-barcode.
func drawBanded(pdf *gofpdf.Fpdf, m Model) {
	const bandH = PageHeightMM / 3

	// Header band: establishment and resident.
	pdf.SetFillColor(31, 78, 121)
	pdf.Rect(0, 0, PageWidthMM, bandH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(8, 10, m.EstablishmentName)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(8, 22, m.ResidentDisplayName)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(8, 30, m.LocationText)

	// Body band: medication, dosage, moments.
	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(0, bandH, PageWidthMM, bandH, "F")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(8, bandH+14, m.MedicationName)
	pdf.SetFont("Helvetica", "", 13)
	pdf.Text(8, bandH+24, m.DosageInstructions)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Text(8, bandH+32, m.MomentText)

	// Footer band: date range and barcode stand-in.
	pdf.SetFillColor(217, 226, 243)
	pdf.Rect(0, 2*bandH, PageWidthMM, bandH, "F")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(8, 2*bandH+14, m.DateRangeText)
	drawBarcodeBlock(pdf, PageWidthMM-70, 2*bandH+6, m.PseudoBarcodeText)
}

// drawPlain centers the text runs on a white page, barcode bottom
// right.
func drawPlain(pdf *gofpdf.Fpdf, m Model) {
	centered := func(y float64, style string, size float64, s string) {
		pdf.SetFont("Helvetica", style, size)
		w := pdf.GetStringWidth(s)
		pdf.Text((PageWidthMM-w)/2, y, s)
	}
	pdf.SetTextColor(0, 0, 0)
	centered(14, "", 11, m.EstablishmentName)
	centered(30, "B", 20, m.ResidentDisplayName)
	centered(38, "", 12, m.LocationText)
	centered(54, "B", 18, m.MedicationName)
	centered(64, "", 13, m.DosageInstructions)
	centered(72, "B", 13, m.MomentText)
	centered(84, "", 12, m.DateRangeText)
	drawBarcodeBlock(pdf, PageWidthMM-70, PageHeightMM-20, m.PseudoBarcodeText)
}

// drawBarcodeBlock paints the filled rectangle standing in for a
// barcode, with the truncated id printed beneath it.
func drawBarcodeBlock(pdf *gofpdf.Fpdf, x, y float64, text string) {
	const w, h = 60.0, 12.0
	pdf.SetFillColor(0, 0, 0)
	pdf.Rect(x, y, w, h, "F")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Courier", "", 10)
	tw := pdf.GetStringWidth(text)
	pdf.Text(x+(w-tw)/2, y+h+5, text)
}
