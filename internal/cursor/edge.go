package cursor

import (
	"fmt"
	"math"
)

// EdgeMode is the policy for positions beyond the screen edges.
type EdgeMode string

const (
	// EdgeClamp stops the cursor at the first and last pixel column.
	EdgeClamp EdgeMode = "clamp"
	// EdgeWrap wraps the cursor around to the opposite edge.
	EdgeWrap EdgeMode = "wrap"
)

// ParseEdgeMode parses "clamp" or "wrap".
func ParseEdgeMode(s string) (EdgeMode, error) {
	switch EdgeMode(s) {
	case EdgeClamp, EdgeWrap:
		return EdgeMode(s), nil
	default:
		return "", fmt.Errorf("unknown edge mode %q (want %q or %q)", s, EdgeClamp, EdgeWrap)
	}
}

// String implements fmt.Stringer.
func (m EdgeMode) String() string {
	return string(m)
}

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// wrap returns v modulo width in [0, width), also for negative v.
func wrap(v, width float64) float64 {
	r := math.Mod(v, width)
	if r < 0 {
		r += width
	}
	// -tiny + width rounds to width
	if r >= width {
		r = 0
	}
	return r
}

// bound applies the edge policy for a screen of the given width.
func (m EdgeMode) bound(x float64, width int) float64 {
	w := float64(width)
	if m == EdgeWrap {
		return wrap(x, w)
	}
	return clamp(x, 0, w-1)
}
