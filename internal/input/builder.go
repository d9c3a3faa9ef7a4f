package input

import "math"

// Axis identifies one analog stick axis.
type Axis int

const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
)

// DefaultDeadZone is the stick magnitude under which an axis reads as 0.
const DefaultDeadZone = 0.1

// Builder accumulates raw control state for one tick and produces a Data.
type Builder struct {
	DeadZone float64

	buttons Button
	axes    [4]float64
}

func NewBuilder() *Builder {
	return &Builder{DeadZone: DefaultDeadZone}
}

func (b *Builder) Press(btn Button) {
	b.buttons |= btn
}

// SetAxis records v for a. Later calls for the same axis override earlier
// ones only when they are further from the center, so a gamepad and a
// keyboard can feed the same stick.
func (b *Builder) SetAxis(a Axis, v float64) {
	if a < AxisLeftX || a > AxisRightY || math.IsNaN(v) {
		return
	}
	v = math.Max(-1, math.Min(1, v))
	if math.Abs(v) < b.DeadZone {
		v = 0
	}
	if math.Abs(v) > math.Abs(b.axes[a]) {
		b.axes[a] = v
	}
}

// Build returns the accumulated snapshot and resets the builder.
func (b *Builder) Build() Data {
	d := Data{
		Valid:       true,
		Buttons:     b.buttons,
		LeftStickX:  float32(b.axes[AxisLeftX]),
		LeftStickY:  float32(b.axes[AxisLeftY]),
		RightStickX: float32(b.axes[AxisRightX]),
		RightStickY: float32(b.axes[AxisRightY]),
	}
	b.buttons = 0
	b.axes = [4]float64{}
	return d
}
