package label

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultDotsPerMM gives roughly 300 dpi, enough for print fidelity
// on the physical label stock.
const DefaultDotsPerMM = 12

// RasterRenderer paints each label onto a high-density bitmap, then
// places every bitmap full-bleed on one page of a PDF. The output
// text is not selectable; this backend exists for pixel-exact
// reproduction of a styled label.
type RasterRenderer struct {
	dotsPerMM int
	regular   *opentype.Font
	bold      *opentype.Font
}

func NewRasterRenderer(dotsPerMM int) (*RasterRenderer, error) {
	if dotsPerMM <= 0 {
		dotsPerMM = DefaultDotsPerMM
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &RasterRenderer{dotsPerMM: dotsPerMM, regular: regular, bold: bold}, nil
}

func (r *RasterRenderer) face(f *opentype.Font, sizeMM float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizeMM * float64(r.dotsPerMM),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Render captures labels sequentially; a failed capture aborts the
// whole batch with an explicit error rather than silently dropping
// the page. The context is checked between labels so a caller
// navigating away cancels the longest-running path we have.
func (r *RasterRenderer) Render(ctx context.Context, models []Model) (*Document, error) {
	if len(models) == 0 {
		return nil, ErrEmptySelection
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: PageWidthMM, Ht: PageHeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}

	for i, m := range models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := r.capture(m)
		if err != nil {
			return nil, fmt.Errorf("capture label %d: %w", i+1, err)
		}
		name := fmt.Sprintf("label-%d", i)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, PageWidthMM, PageHeightMM, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}
	return &Document{
		ContentType: "application/pdf",
		Filename:    "labels-raster.pdf",
		Data:        buf.Bytes(),
	}, nil
}

// capture rasterizes one label to a PNG at the configured density.
func (r *RasterRenderer) capture(m Model) ([]byte, error) {
	w := int(PageWidthMM) * r.dotsPerMM
	h := int(PageHeightMM) * r.dotsPerMM
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	mm := func(v float64) float64 { return v * float64(r.dotsPerMM) }

	type run struct {
		y    float64 // baseline in mm
		bold bool
		size float64 // font size in mm
		text string
	}
	runs := []run{
		{14, false, 4, m.EstablishmentName},
		{30, true, 7, m.ResidentDisplayName},
		{38, false, 4.5, m.LocationText},
		{54, true, 6.5, m.MedicationName},
		{64, false, 5, m.DosageInstructions},
		{72, true, 5, m.MomentText},
		{84, false, 4.5, m.DateRangeText},
	}
	for _, ru := range runs {
		f := r.regular
		if ru.bold {
			f = r.bold
		}
		face, err := r.face(f, ru.size)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(ru.text, mm(PageWidthMM/2), mm(ru.y), 0.5, 0)
	}

	// Barcode stand-in, bottom right.
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(mm(PageWidthMM-70), mm(PageHeightMM-20), mm(60), mm(12))
	dc.Fill()
	face, err := r.face(r.regular, 3.5)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)
	dc.DrawStringAnchored(m.PseudoBarcodeText, mm(PageWidthMM-40), mm(PageHeightMM-3), 0.5, 0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
