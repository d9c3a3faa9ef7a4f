package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfByteOrder(t *testing.T) {
	c := Of(1, 2, 3, 4)
	assert.Equal(t, Color(0x04030201), c)
	assert.Equal(t, uint8(1), c.Get(Blue))
	assert.Equal(t, uint8(2), c.Get(Green))
	assert.Equal(t, uint8(3), c.Get(Red))
	assert.Equal(t, uint8(4), c.Get(Alpha))
}

func TestWith(t *testing.T) {
	c := Of(10, 20, 30, 40).With(Green, 99)
	assert.Equal(t, Of(10, 99, 30, 40), c)
}

func TestMoveTowards(t *testing.T) {
	c := Of(0, 0, 0, 0)
	assert.True(t, MoveTowards(Of(255, 1, 0, 0), &c))
	assert.Equal(t, Of(3, 1, 0, 0), c)

	c = Of(10, 10, 10, 0)
	assert.True(t, MoveTowards(Of(0, 9, 10, 0), &c))
	assert.Equal(t, Of(7, 9, 10, 0), c)

	target := Of(7, 9, 10, 0)
	assert.False(t, MoveTowards(target, &c))
	assert.Equal(t, target, c)
}

func TestMoveTowardsSaturates(t *testing.T) {
	c := Of(254, 1, 0, 0)
	assert.True(t, MoveTowards(Of(255, 0, 0, 0), &c))
	assert.Equal(t, Of(255, 0, 0, 0), c)
}

func TestMoveTowardsConverges(t *testing.T) {
	c := Of(17, 200, 3, 0)
	for _, target := range Palette {
		steps := 0
		for MoveTowards(target, &c) {
			steps++
			if !assert.Less(t, steps, 100) {
				return
			}
		}
		assert.Equal(t, target, c)
	}
}

func TestMoveBy(t *testing.T) {
	c := Of(100, 0, 250, 0)

	MoveBy(Blue, 2.5, &c)
	assert.Equal(t, uint8(103), c.Get(Blue))

	MoveBy(Blue, -0.4, &c)
	assert.Equal(t, uint8(103), c.Get(Blue))

	MoveBy(Red, 5, &c)
	assert.Equal(t, uint8(255), c.Get(Red))

	MoveBy(Green, -5, &c)
	assert.Equal(t, uint8(0), c.Get(Green))
}

func TestFillAndBytes(t *testing.T) {
	frame := make([]Color, 3)
	Fill(frame, Of(1, 2, 3, 4))

	out := Bytes(frame, nil)
	assert.Equal(t, []byte{1, 2, 3, 4, 1, 2, 3, 4, 1, 2, 3, 4}, out)

	reused := Bytes(frame[:1], out)
	assert.Len(t, reused, 4)
	assert.Equal(t, &out[0], &reused[0])
}

func TestPalette(t *testing.T) {
	assert.Len(t, Palette, 8)
	assert.Equal(t, Of(255, 0, 0, 0), Palette[0])
	assert.Equal(t, Of(0, 0, 0, 0), Palette[7])
}
