// Package color implements the packed 32-bit pixel color used by the demo
// and the arithmetic that moves it around.
package color

import "math"

// Component indexes a byte of a packed Color.
type Component int

const (
	Blue Component = iota
	Green
	Red
	Alpha
)

// Color is a packed BGRA pixel. Byte 0 (the least significant) is blue,
// so a little-endian dump of a []Color is a BGRA frame.
type Color uint32

// Step is how far MoveTowards advances each component per call.
const Step = 3

// Of packs the given components.
func Of(blue, green, red, alpha uint8) Color {
	return Color(blue) | Color(green)<<8 | Color(red)<<16 | Color(alpha)<<24
}

// Get returns one component.
func (c Color) Get(comp Component) uint8 {
	return uint8(c >> (8 * uint(comp)))
}

// With returns c with comp replaced by v.
func (c Color) With(comp Component, v uint8) Color {
	shift := 8 * uint(comp)
	return c&^(0xff<<shift) | Color(v)<<shift
}

// Palette is the sequence of targets cycled through while A is held.
var Palette = [...]Color{
	Of(255, 0, 0, 0),
	Of(0, 255, 0, 0),
	Of(255, 255, 0, 0),
	Of(0, 0, 255, 0),
	Of(255, 0, 255, 0),
	Of(0, 255, 255, 0),
	Of(255, 255, 255, 0),
	Of(0, 0, 0, 0),
}

// MoveTowards steps each component of current by Step toward target without
// overshooting. It reports whether anything changed.
func MoveTowards(target Color, current *Color) bool {
	changed := false
	c := *current
	for comp := Blue; comp <= Alpha; comp++ {
		want, have := int(target.Get(comp)), int(c.Get(comp))
		if want == have {
			continue
		}
		if want > have {
			have = min(have+Step, want)
		} else {
			have = max(have-Step, want)
		}
		c = c.With(comp, uint8(have))
		changed = true
	}
	*current = c
	return changed
}

// MoveBy adds delta to one component, rounding and clamping to [0, 255].
func MoveBy(comp Component, delta float64, current *Color) {
	v := math.Round(float64(current.Get(comp)) + delta)
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	*current = current.With(comp, uint8(v))
}

// Fill sets every pixel of frame to c.
func Fill(frame []Color, c Color) {
	for i := range frame {
		frame[i] = c
	}
}

// Bytes serializes frame as BGRA into dst, growing it if needed.
func Bytes(frame []Color, dst []byte) []byte {
	n := 4 * len(frame)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, c := range frame {
		dst[4*i] = byte(c)
		dst[4*i+1] = byte(c >> 8)
		dst[4*i+2] = byte(c >> 16)
		dst[4*i+3] = byte(c >> 24)
	}
	return dst
}
