// Package indicator derives the visual state of the cross marker from
// the driving force field: color tells the rotation direction, width
// tells the magnitude. The marker is display-only and feeds nothing
// back into the bake.
package indicator

import (
	"fmt"
	"strings"

	"golang.org/x/image/colornames"
)

// White is the color written whenever the driver strength is zero.
var White = []float64{1, 1, 1, 1}

// Palette holds the two direction colors as normalized RGBA vectors.
type Palette struct {
	Positive []float64
	Negative []float64
}

// NewPalette resolves two SVG 1.1 color names into a palette. The
// pipeline default is blue for positive strength and red for negative.
func NewPalette(positive, negative string) (Palette, error) {
	pos, err := ParseColor(positive)
	if err != nil {
		return Palette{}, err
	}
	neg, err := ParseColor(negative)
	if err != nil {
		return Palette{}, err
	}
	return Palette{Positive: pos, Negative: neg}, nil
}

// ParseColor resolves a color name into a normalized RGBA vector.
func ParseColor(name string) ([]float64, error) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown color %q", name)
	}
	return []float64{
		float64(c.R) / 255,
		float64(c.G) / 255,
		float64(c.B) / 255,
		1,
	}, nil
}

// ForStrength maps the driver strength sign onto a color: positive
// strength takes the positive color, negative the negative one, and
// exactly zero stays white.
func (p Palette) ForStrength(strength float64) []float64 {
	switch {
	case strength > 0:
		return append([]float64(nil), p.Positive...)
	case strength < 0:
		return append([]float64(nil), p.Negative...)
	default:
		return append([]float64(nil), White...)
	}
}

// ScaleFor returns the marker's scale vector for a driver strength:
// horizontal scale is 1 + strength, so zero strength leaves the base
// width and strength 1 doubles it. The vertical scale is held at its
// baseline.
func ScaleFor(strength, baseZ float64) []float64 {
	xy := 1 + strength
	return []float64{xy, xy, baseZ}
}
