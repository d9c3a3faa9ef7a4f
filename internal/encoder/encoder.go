package encoder

import (
	"errors"

	"github.com/junsooki/drchello/internal/screen"
)

// ErrFrameSize is returned when a raw frame does not match its dimensions.
var ErrFrameSize = errors.New("frame size does not match dimensions")

// Encoder encodes a raw frame into bytes.
type Encoder interface {
	Encode(pix []byte, w, h int, f screen.PixelFormat) ([]byte, error)
	SetQuality(quality int)
}
