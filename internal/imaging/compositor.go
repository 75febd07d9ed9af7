package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// TemplateSize is the printable rectangle of a case template in pixels.
type TemplateSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CaseTemplate is the printable rectangle shared by all phone case templates.
var CaseTemplate = TemplateSize{Width: 896, Height: 1831}

// CompositeError reports that rasterizing a design failed. No partial
// artifact exists when it is returned.
type CompositeError struct {
	Stage string
	Err   error
}

func (e *CompositeError) Error() string {
	return fmt.Sprintf("composite %s: %v", e.Stage, e.Err)
}

func (e *CompositeError) Unwrap() error { return e.Err }

// Composite draws src at the placement's offset and size onto a surface
// sized to the template's printable rectangle and encodes it as PNG. PNG
// keeps the case edges lossless.
func Composite(src *SourceImage, placement Placement, template TemplateSize) ([]byte, error) {
	if src == nil || src.Image == nil {
		return nil, &CompositeError{Stage: "source", Err: fmt.Errorf("source image not loaded")}
	}
	if src.Image.Bounds().Empty() {
		return nil, &CompositeError{Stage: "source", Err: fmt.Errorf("source image is empty")}
	}
	if template.Width <= 0 || template.Height <= 0 {
		return nil, &CompositeError{Stage: "surface", Err: fmt.Errorf("template size %dx%d is not drawable", template.Width, template.Height)}
	}
	if err := placement.Validate(); err != nil {
		return nil, &CompositeError{Stage: "placement", Err: err}
	}

	surface := image.NewRGBA(image.Rect(0, 0, template.Width, template.Height))

	target := image.Rect(
		int(placement.X),
		int(placement.Y),
		int(placement.X+placement.Width),
		int(placement.Y+placement.Height),
	)

	// Over preserves transparency outside the photo; the drag interaction
	// allows the target rectangle to extend past the surface, which Scale
	// clips for free.
	xdraw.ApproxBiLinear.Scale(surface, target, src.Image, src.Image.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, surface); err != nil {
		return nil, &CompositeError{Stage: "encode", Err: err}
	}

	return buf.Bytes(), nil
}
