package label

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

// printViewTmpl emits one fixed-size block per label with a forced
// page break after each; the browser's print pipeline handles
// pagination and the output device.
const printViewTmpl = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Labels</title>
<style>
@page { size: {{.PageW}}mm {{.PageH}}mm; margin: 0; }
body { margin: 0; font-family: Helvetica, Arial, sans-serif; }
.label {
  width: {{.PageW}}mm;
  height: {{.PageH}}mm;
  box-sizing: border-box;
  padding: 8mm;
  page-break-after: always;
  text-align: center;
}
.establishment { font-size: 11pt; }
.resident { font-size: 20pt; font-weight: bold; margin-top: 4mm; }
.location { font-size: 12pt; }
.medication { font-size: 18pt; font-weight: bold; margin-top: 8mm; }
.dosage { font-size: 13pt; }
.moments { font-size: 13pt; font-weight: bold; }
.dates { font-size: 12pt; margin-top: 6mm; }
.barcode {
  width: 60mm; height: 12mm; background: #000;
  margin: 4mm auto 0;
}
.barcode-text { font-family: monospace; font-size: 10pt; }
</style>
</head>
<body>
{{range .Models}}<div class="label">
  <div class="establishment">{{.EstablishmentName}}</div>
  <div class="resident">{{.ResidentDisplayName}}</div>
  <div class="location">{{.LocationText}}</div>
  <div class="medication">{{.MedicationName}}</div>
  <div class="dosage">{{.DosageInstructions}}</div>
  <div class="moments">{{.MomentText}}</div>
  <div class="dates">{{.DateRangeText}}</div>
  <div class="barcode"></div>
  <div class="barcode-text">{{.PseudoBarcodeText}}</div>
</div>
{{end}}</body>
</html>
`

// PrintViewRenderer emits a self-contained HTML document sized to the
// label stock, one block per label.
type PrintViewRenderer struct {
	tmpl *template.Template
}

func NewPrintViewRenderer() (*PrintViewRenderer, error) {
	tmpl, err := template.New("printview").Parse(printViewTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse print view template: %w", err)
	}
	return &PrintViewRenderer{tmpl: tmpl}, nil
}

func (r *PrintViewRenderer) Render(ctx context.Context, models []Model) (*Document, error) {
	if len(models) == 0 {
		return nil, ErrEmptySelection
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, struct {
		PageW, PageH float64
		Models       []Model
	}{PageWidthMM, PageHeightMM, models})
	if err != nil {
		return nil, fmt.Errorf("render print view: %w", err)
	}
	return &Document{
		ContentType: "text/html; charset=utf-8",
		Filename:    "labels.html",
		Data:        buf.Bytes(),
	}, nil
}
