package input

// Button is a bit in Data.Buttons.
type Button uint32

const (
	ButtonSync  Button = 0x0001
	ButtonHome  Button = 0x0002
	ButtonMinus Button = 0x0004
	ButtonPlus  Button = 0x0008
	ButtonR     Button = 0x0010
	ButtonL     Button = 0x0020
	ButtonZR    Button = 0x0040
	ButtonZL    Button = 0x0080
	ButtonDown  Button = 0x0100
	ButtonUp    Button = 0x0200
	ButtonRight Button = 0x0400
	ButtonLeft  Button = 0x0800
	ButtonY     Button = 0x1000
	ButtonX     Button = 0x2000
	ButtonB     Button = 0x4000
	ButtonA     Button = 0x8000
)

// Data is one input snapshot, and the wire format sent over the input
// data channel. Stick axes are in [-1, 1]; positive Y is up.
type Data struct {
	Valid       bool    `json:"valid"`
	Buttons     Button  `json:"buttons,omitempty"`
	LeftStickX  float32 `json:"lx,omitempty"`
	LeftStickY  float32 `json:"ly,omitempty"`
	RightStickX float32 `json:"rx,omitempty"`
	RightStickY float32 `json:"ry,omitempty"`
}

// Pressed reports whether every bit of b is set.
func (d Data) Pressed(b Button) bool {
	return d.Buttons&b == b
}

// Equal compares two snapshots field by field.
func (d Data) Equal(o Data) bool {
	return d == o
}
