package display

import (
	"image"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/junsooki/drchello/internal/input"
	"github.com/junsooki/drchello/internal/screen"
)

// PadDisplay renders the streamed screen with Ebitengine and samples the
// first connected gamepad plus the keyboard.
type PadDisplay struct {
	mu          sync.Mutex
	frame       *image.RGBA
	dirty       bool
	ebitenImage *ebiten.Image

	onInput InputCallback
	builder *input.Builder
	scale   float64
	closing atomic.Bool

	gamepads []ebiten.GamepadID
}

// NewPadDisplay creates a window scale times the pad's native size.
func NewPadDisplay(scale float64, onInput InputCallback) *PadDisplay {
	return &PadDisplay{
		onInput: onInput,
		builder: input.NewBuilder(),
		scale:   scale,
	}
}

// SetFrame updates the displayed frame (called from the network goroutine).
func (d *PadDisplay) SetFrame(img *image.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = img
	d.dirty = true
}

// Close ends Run at the next tick. It is safe to call from any goroutine.
func (d *PadDisplay) Close() {
	d.closing.Store(true)
}

// Run starts the Ebitengine game loop. Must be called from the main goroutine.
func (d *PadDisplay) Run() error {
	ebiten.SetWindowSize(int(screen.Width*d.scale), int(screen.Height*d.scale))
	ebiten.SetWindowTitle("DRC Pad")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(d)
}

// --- ebiten.Game interface ---

func (d *PadDisplay) Update() error {
	if d.closing.Load() {
		return ebiten.Termination
	}
	d.sampleGamepad()
	d.sampleKeyboard()
	if d.onInput != nil {
		d.onInput(d.builder.Build())
	}
	return nil
}

func (d *PadDisplay) Draw(dst *ebiten.Image) {
	d.mu.Lock()
	frame, dirty := d.frame, d.dirty
	d.dirty = false
	d.mu.Unlock()

	if frame == nil {
		return
	}

	fw, fh := frame.Bounds().Dx(), frame.Bounds().Dy()
	if d.ebitenImage == nil || d.ebitenImage.Bounds().Dx() != fw || d.ebitenImage.Bounds().Dy() != fh {
		d.ebitenImage = ebiten.NewImage(fw, fh)
		dirty = true
	}
	if dirty {
		d.ebitenImage.WritePixels(frame.Pix)
	}

	sw, sh := dst.Bounds().Dx(), dst.Bounds().Dy()
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), float64(fw), float64(fh))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	dst.DrawImage(d.ebitenImage, op)
}

// Layout keeps the pad's native resolution; Ebitengine scales it to the window.
func (d *PadDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screen.Width, screen.Height
}

// --- Input sampling ---

// Nintendo face-button positions: A right, B bottom, X top, Y left.
var gamepadButtons = []struct {
	eb  ebiten.StandardGamepadButton
	btn input.Button
}{
	{ebiten.StandardGamepadButtonRightRight, input.ButtonA},
	{ebiten.StandardGamepadButtonRightBottom, input.ButtonB},
	{ebiten.StandardGamepadButtonRightTop, input.ButtonX},
	{ebiten.StandardGamepadButtonRightLeft, input.ButtonY},
	{ebiten.StandardGamepadButtonFrontTopLeft, input.ButtonL},
	{ebiten.StandardGamepadButtonFrontTopRight, input.ButtonR},
	{ebiten.StandardGamepadButtonFrontBottomLeft, input.ButtonZL},
	{ebiten.StandardGamepadButtonFrontBottomRight, input.ButtonZR},
	{ebiten.StandardGamepadButtonCenterLeft, input.ButtonMinus},
	{ebiten.StandardGamepadButtonCenterRight, input.ButtonPlus},
	{ebiten.StandardGamepadButtonCenterCenter, input.ButtonHome},
	{ebiten.StandardGamepadButtonLeftTop, input.ButtonUp},
	{ebiten.StandardGamepadButtonLeftBottom, input.ButtonDown},
	{ebiten.StandardGamepadButtonLeftLeft, input.ButtonLeft},
	{ebiten.StandardGamepadButtonLeftRight, input.ButtonRight},
}

var keyButtons = []struct {
	key ebiten.Key
	btn input.Button
}{
	{ebiten.KeyEnter, input.ButtonA},
	{ebiten.KeyBackspace, input.ButtonB},
	{ebiten.KeyX, input.ButtonX},
	{ebiten.KeyY, input.ButtonY},
	{ebiten.KeyQ, input.ButtonL},
	{ebiten.KeyE, input.ButtonR},
	{ebiten.KeyMinus, input.ButtonMinus},
	{ebiten.KeyEqual, input.ButtonPlus},
	{ebiten.KeyEscape, input.ButtonHome},
	{ebiten.KeyH, input.ButtonHome},
	{ebiten.KeyArrowUp, input.ButtonUp},
	{ebiten.KeyArrowDown, input.ButtonDown},
	{ebiten.KeyArrowLeft, input.ButtonLeft},
	{ebiten.KeyArrowRight, input.ButtonRight},
}

// keyAxes maps key pairs to a full stick deflection: neg pushes -1, pos +1.
var keyAxes = []struct {
	axis     input.Axis
	neg, pos ebiten.Key
}{
	{input.AxisLeftX, ebiten.KeyA, ebiten.KeyD},
	{input.AxisLeftY, ebiten.KeyS, ebiten.KeyW},
	{input.AxisRightX, ebiten.KeyJ, ebiten.KeyL},
	{input.AxisRightY, ebiten.KeyK, ebiten.KeyI},
}

func (d *PadDisplay) sampleGamepad() {
	d.gamepads = ebiten.AppendGamepadIDs(d.gamepads[:0])
	for _, id := range d.gamepads {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, b := range gamepadButtons {
			if ebiten.IsStandardGamepadButtonPressed(id, b.eb) {
				d.builder.Press(b.btn)
			}
		}
		// Ebitengine reports vertical axes with down positive.
		d.builder.SetAxis(input.AxisLeftX, ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal))
		d.builder.SetAxis(input.AxisLeftY, -ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical))
		d.builder.SetAxis(input.AxisRightX, ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal))
		d.builder.SetAxis(input.AxisRightY, -ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical))
		return
	}
}

func (d *PadDisplay) sampleKeyboard() {
	for _, k := range keyButtons {
		if ebiten.IsKeyPressed(k.key) {
			d.builder.Press(k.btn)
		}
	}
	for _, a := range keyAxes {
		var v float64
		if ebiten.IsKeyPressed(a.neg) {
			v--
		}
		if ebiten.IsKeyPressed(a.pos) {
			v++
		}
		d.builder.SetAxis(a.axis, v)
	}
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
