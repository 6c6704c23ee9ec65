package label

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func testModels(n int) []Model {
	models := make([]Model, n)
	for i := range models {
		models[i] = Format(sample())
	}
	return models
}

func renderers(t *testing.T) map[string]Renderer {
	t.Helper()
	banded, err := NewPDFRenderer(StyleBanded)
	if err != nil {
		t.Fatalf("banded renderer: %v", err)
	}
	plain, err := NewPDFRenderer(StylePlain)
	if err != nil {
		t.Fatalf("plain renderer: %v", err)
	}
	// Low density keeps the raster test fast.
	raster, err := NewRasterRenderer(2)
	if err != nil {
		t.Fatalf("raster renderer: %v", err)
	}
	printView, err := NewPrintViewRenderer()
	if err != nil {
		t.Fatalf("print view renderer: %v", err)
	}
	return map[string]Renderer{
		"banded":     banded,
		"plain":      plain,
		"raster":     raster,
		"print-view": printView,
	}
}

func TestRenderers_RefuseEmptySelection(t *testing.T) {
	for name, r := range renderers(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := r.Render(context.Background(), nil); !errors.Is(err, ErrEmptySelection) {
				t.Errorf("empty selection: got %v, want ErrEmptySelection", err)
			}
		})
	}
}

func TestRenderers_EmitNonEmptyDocument(t *testing.T) {
	for name, r := range renderers(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := r.Render(context.Background(), testModels(2))
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if len(doc.Data) == 0 {
				t.Error("expected document bytes")
			}
			if doc.ContentType == "" || doc.Filename == "" {
				t.Errorf("incomplete document metadata: %+v", doc)
			}
		})
	}
}

func TestRenderers_HonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, r := range renderers(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := r.Render(ctx, testModels(3)); !errors.Is(err, context.Canceled) {
				t.Errorf("cancelled context: got %v, want context.Canceled", err)
			}
		})
	}
}

func TestPDF_PageCountMatchesSelection(t *testing.T) {
	banded, _ := NewPDFRenderer(StyleBanded)
	doc, err := banded.Render(context.Background(), testModels(3))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// The PDF page tree declares its total page count.
	if !bytes.Contains(doc.Data, []byte("/Count 3")) {
		t.Error("expected a 3-page document")
	}
}

func TestPrintView_ContainsModelStrings(t *testing.T) {
	pv, _ := NewPrintViewRenderer()
	m := Format(sample())
	doc, err := pv.Render(context.Background(), []Model{m})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(doc.Data)
	for _, want := range []string{
		m.EstablishmentName, m.ResidentDisplayName, m.LocationText,
		m.MedicationName, m.MomentText, m.DateRangeText, m.PseudoBarcodeText,
		"page-break-after: always",
	} {
		if !bytes.Contains([]byte(html), []byte(want)) {
			t.Errorf("print view missing %q", want)
		}
	}
}

func TestPrintView_DuplicatesRenderSeparately(t *testing.T) {
	pv, _ := NewPrintViewRenderer()
	m := Format(sample())
	doc, err := pv.Render(context.Background(), []Model{m, m})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := bytes.Count(doc.Data, []byte(`class="label"`)); got != 2 {
		t.Errorf("expected 2 label blocks for a duplicated selection, got %d", got)
	}
}

// Content parity: whatever backend consumes a model, the display
// strings are the formatter's, byte for byte. The backends receive
// the same Model value, so it is enough to assert Format itself is
// stable and that no renderer mutates its input.
func TestRenderers_DoNotMutateModels(t *testing.T) {
	models := testModels(2)
	want := make([]Model, len(models))
	copy(want, models)

	for name, r := range renderers(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := r.Render(context.Background(), models); err != nil {
				t.Fatalf("Render: %v", err)
			}
			for i := range models {
				if models[i] != want[i] {
					t.Errorf("model %d mutated by renderer", i)
				}
			}
		})
	}
}

func TestDateFormattingSharedAcrossBackends(t *testing.T) {
	d := sample()
	d.EndDate = timeptr(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	m := Format(d)

	pv, _ := NewPrintViewRenderer()
	doc, err := pv.Render(context.Background(), []Model{m})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(doc.Data, []byte("05/01/2025 - 30/06/2025")) {
		t.Error("print view must carry the formatter's date range verbatim")
	}
}
