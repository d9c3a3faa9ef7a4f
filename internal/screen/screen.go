package screen

import "fmt"

// Pad screen geometry.
const (
	Width  = 854
	Height = 480
	Pixels = Width * Height
)

// PixelFormat describes the memory layout of a raw frame.
type PixelFormat int

const (
	RGBA PixelFormat = iota
	BGRA
	RGB565
)

// BytesPerPixel returns the pixel size for f, or 0 if f is unknown.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case RGBA, BGRA:
		return 4
	case RGB565:
		return 2
	}
	return 0
}

func (f PixelFormat) String() string {
	switch f {
	case RGBA:
		return "rgba"
	case BGRA:
		return "bgra"
	case RGB565:
		return "rgb565"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// ParsePixelFormat is the inverse of PixelFormat.String.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "rgba":
		return RGBA, nil
	case "bgra":
		return BGRA, nil
	case "rgb565":
		return RGB565, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}

// FrameSize returns the byte length of a w*h frame in format f.
func FrameSize(w, h int, f PixelFormat) int {
	return w * h * f.BytesPerPixel()
}
