package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/junsooki/drchello/internal/screen"
)

// JPEGEncoder encodes frames as JPEG. It is not safe for concurrent use:
// the RGBA conversion buffer is reused between calls.
type JPEGEncoder struct {
	quality int
	rgba    *image.RGBA
	buf     bytes.Buffer
}

// NewJPEGEncoder creates a JPEG encoder with the given quality (1-100).
func NewJPEGEncoder(quality int) *JPEGEncoder {
	e := &JPEGEncoder{}
	e.SetQuality(quality)
	return e
}

func (e *JPEGEncoder) SetQuality(quality int) {
	e.quality = max(1, min(quality, 100))
}

func (e *JPEGEncoder) Quality() int {
	return e.quality
}

func (e *JPEGEncoder) Encode(pix []byte, w, h int, f screen.PixelFormat) ([]byte, error) {
	if f.BytesPerPixel() == 0 {
		return nil, fmt.Errorf("encode: unsupported pixel format %s", f)
	}
	if w <= 0 || h <= 0 || len(pix) != screen.FrameSize(w, h, f) {
		return nil, fmt.Errorf("encode %dx%d %s (%d bytes): %w", w, h, f, len(pix), ErrFrameSize)
	}

	img := e.image(w, h)
	toRGBA(img.Pix, pix, f)

	e.buf.Reset()
	e.buf.Grow(64 * 1024)
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out, nil
}

func (e *JPEGEncoder) image(w, h int) *image.RGBA {
	if e.rgba == nil || e.rgba.Bounds().Dx() != w || e.rgba.Bounds().Dy() != h {
		e.rgba = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return e.rgba
}

// toRGBA converts src pixels in format f into dst, which is RGBA with
// opaque alpha. The pad screen has no transparency.
func toRGBA(dst, src []byte, f screen.PixelFormat) {
	switch f {
	case screen.RGBA:
		for i := 0; i < len(dst); i += 4 {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i], src[i+1], src[i+2], 0xff
		}
	case screen.BGRA:
		for i := 0; i < len(dst); i += 4 {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], 0xff
		}
	case screen.RGB565:
		for i, j := 0, 0; i < len(dst); i, j = i+4, j+2 {
			v := uint16(src[j]) | uint16(src[j+1])<<8
			r, g, b := byte(v>>11), byte(v>>5)&0x3f, byte(v)&0x1f
			dst[i] = r<<3 | r>>2
			dst[i+1] = g<<2 | g>>4
			dst[i+2] = b<<3 | b>>2
			dst[i+3] = 0xff
		}
	}
}
