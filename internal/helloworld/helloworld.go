// Package helloworld is the color demo: it fills the pad screen with a
// solid color that the pad's buttons and sticks move around.
//
// Controls:
//   - A: cycle through the palette, fading toward each target in turn.
//   - Home: shut the pad down and exit.
//   - Left stick X/Y: change blue/green.
//   - Right stick X: change red.
package helloworld

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/junsooki/drchello/internal/color"
	"github.com/junsooki/drchello/internal/input"
	"github.com/junsooki/drchello/internal/screen"
)

const (
	// StickSpeed scales a stick deflection into a per-frame component delta.
	StickSpeed = 5.0
	// ShutdownGrace is the pause between ShutdownPad and Stop.
	ShutdownGrace = 100 * time.Millisecond
)

// Session is the device session the demo drives.
type Session interface {
	PollInput() input.Data
	PushVidFrame(pix []byte, w, h int, f screen.PixelFormat) error
	ShutdownPad() error
	Stop()
}

// Demo holds the color state and the frame buffer.
type Demo struct {
	current color.Color
	target  int
	frame   []color.Color
	pix     []byte
}

// New returns a demo showing the first palette color.
func New() *Demo {
	d := &Demo{
		current: color.Of(255, 0, 0, 0),
		frame:   make([]color.Color, screen.Pixels),
	}
	color.Fill(d.frame, d.current)
	return d
}

// Color returns the color currently on screen.
func (d *Demo) Color() color.Color {
	return d.current
}

// Target returns the palette index A is fading toward.
func (d *Demo) Target() int {
	return d.target
}

// Step applies one input snapshot and reports whether the demo should
// quit. The frame is refilled whenever the color may have changed.
func (d *Demo) Step(in input.Data) (quit bool) {
	if in.Valid && in.Pressed(input.ButtonHome) {
		return true
	}

	changed := true
	if in.Valid && in.Pressed(input.ButtonA) && !color.MoveTowards(color.Palette[d.target], &d.current) {
		// Target reached: aim for the next one.
		d.target = (d.target + 1) % len(color.Palette)
		changed = false
	} else {
		if in.Valid && in.LeftStickX != 0 {
			color.MoveBy(color.Blue, StickSpeed*float64(in.LeftStickX), &d.current)
		}
		if in.Valid && in.LeftStickY != 0 {
			color.MoveBy(color.Green, StickSpeed*float64(in.LeftStickY), &d.current)
		}
		if in.Valid && in.RightStickX != 0 {
			color.MoveBy(color.Red, StickSpeed*float64(in.RightStickX), &d.current)
		}
	}

	if changed {
		color.Fill(d.frame, d.current)
	}
	return false
}

// Frame returns the current frame as BGRA bytes. The slice is reused by
// the next call.
func (d *Demo) Frame() []byte {
	d.pix = color.Bytes(d.frame, d.pix)
	return d.pix
}

// Run polls, steps and pushes one frame per interval until Home is pressed
// or ctx is done, then shuts the pad down and stops the session.
func (d *Demo) Run(ctx context.Context, sess Session, interval time.Duration) {
	for ctx.Err() == nil {
		if d.Step(sess.PollInput()) {
			logrus.Info("Home pressed, shutting down")
			break
		}
		if err := sess.PushVidFrame(d.Frame(), screen.Width, screen.Height, screen.BGRA); err != nil {
			logrus.Debugf("push frame: %v", err)
		}
		sleep(ctx, interval)
	}

	if err := sess.ShutdownPad(); err != nil {
		logrus.Warnf("shutdown pad: %v", err)
	}
	time.Sleep(ShutdownGrace)
	sess.Stop()
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
