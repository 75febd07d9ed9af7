package imaging

import (
	"fmt"
)

// Placement describes where the user's photo is drawn relative to the case
// template's printable rectangle, in template pixel coordinates. The offset
// may be negative when the photo hangs over the template edge.
type Placement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate rejects placements without a drawable area.
func (p Placement) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("placement size %gx%g is not drawable", p.Width, p.Height)
	}
	return nil
}

// AspectRatio returns width over height.
func (p Placement) AspectRatio() float64 {
	return p.Width / p.Height
}

// ScaleTo returns a placement resized to the given width with the aspect
// ratio locked, keeping the offset. Mirrors the configurator's corner-handle
// resize behavior.
func (p Placement) ScaleTo(width float64) Placement {
	scaled := p
	scaled.Width = width
	scaled.Height = width / p.AspectRatio()
	return scaled
}
