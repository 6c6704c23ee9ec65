package label

import (
	"context"
	"errors"
)

// Physical label stock dimensions. Every backend emits pages of
// exactly this size, landscape.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 105.0
)

// ErrEmptySelection is returned when a render is requested with no
// labels. No backend ever emits an empty document.
var ErrEmptySelection = errors.New("no labels selected")

// Document is a rendered label set ready to be sent to the caller.
type Document struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Renderer turns an ordered list of label models into a multi-page
// document, one page per model, pages in input order.
type Renderer interface {
	Render(ctx context.Context, models []Model) (*Document, error)
}
