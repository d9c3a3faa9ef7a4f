// Package display is the pad's screen and controls: an Ebitengine window
// showing streamed frames while sampling a gamepad and the keyboard.
package display

import "github.com/junsooki/drchello/internal/input"

// InputCallback receives the control state sampled on every tick.
type InputCallback func(d input.Data)
