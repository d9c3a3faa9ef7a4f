package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameSize(t *testing.T) {
	assert.Equal(t, 854*480*4, FrameSize(Width, Height, BGRA))
	assert.Equal(t, 854*480*2, FrameSize(Width, Height, RGB565))
	assert.Equal(t, 0, FrameSize(Width, Height, PixelFormat(42)))
}

func TestParsePixelFormat(t *testing.T) {
	for _, f := range []PixelFormat{RGBA, BGRA, RGB565} {
		got, err := ParsePixelFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParsePixelFormat("yuv420")
	assert.Error(t, err)
	assert.Equal(t, "PixelFormat(9)", PixelFormat(9).String())
}
