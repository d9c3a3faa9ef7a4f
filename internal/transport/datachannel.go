package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"
)

// ErrChannelNotSet is returned when sending on a channel that has not been
// attached yet.
var ErrChannelNotSet = errors.New("data channel not set")

// channel is the part of *webrtc.DataChannel the transport uses.
type channel interface {
	Label() string
	Send(data []byte) error
	ReadyState() webrtc.DataChannelState
	OnMessage(f func(msg webrtc.DataChannelMessage))
}

// DataChannelTransport carries frames, input and control messages over
// WebRTC data channels.
type DataChannelTransport struct {
	mu        sync.RWMutex
	framesDC  channel
	inputDC   channel
	controlDC channel

	onFrame   func(data []byte)
	onInput   func(data []byte)
	onControl func(msg ControlMessage)
}

// NewDataChannelTransport returns a transport with no channels attached.
func NewDataChannelTransport() *DataChannelTransport {
	return &DataChannelTransport{}
}

func (t *DataChannelTransport) SendFrame(data []byte) error {
	return t.sendOn(t.frames(), LabelFrames, data)
}

func (t *DataChannelTransport) SendInput(data []byte) error {
	return t.sendOn(t.input(), LabelInput, data)
}

func (t *DataChannelTransport) SendControl(msg ControlMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return t.sendOn(t.control(), LabelControl, data)
}

func (t *DataChannelTransport) sendOn(dc channel, label string, data []byte) error {
	if dc == nil {
		return fmt.Errorf("%s: %w", label, ErrChannelNotSet)
	}
	return dc.Send(data)
}

func (t *DataChannelTransport) OnFrame(cb func(data []byte)) {
	t.mu.Lock()
	t.onFrame = cb
	t.mu.Unlock()
}

func (t *DataChannelTransport) OnInput(cb func(data []byte)) {
	t.mu.Lock()
	t.onInput = cb
	t.mu.Unlock()
}

func (t *DataChannelTransport) OnControl(cb func(msg ControlMessage)) {
	t.mu.Lock()
	t.onControl = cb
	t.mu.Unlock()
}

// Ready reports whether the frames channel is open.
func (t *DataChannelTransport) Ready() bool {
	dc := t.frames()
	return dc != nil && dc.ReadyState() == webrtc.DataChannelStateOpen
}

// Attach routes dc to the slot matching its label. Unknown labels are
// ignored and reported as false.
func (t *DataChannelTransport) Attach(dc *webrtc.DataChannel) bool {
	return t.attach(dc)
}

func (t *DataChannelTransport) attach(dc channel) bool {
	switch dc.Label() {
	case LabelFrames:
		t.SetFramesChannel(dc)
	case LabelInput:
		t.SetInputChannel(dc)
	case LabelControl:
		t.SetControlChannel(dc)
	default:
		return false
	}
	return true
}

// SetFramesChannel sets or replaces the frames channel.
func (t *DataChannelTransport) SetFramesChannel(dc channel) {
	t.mu.Lock()
	t.framesDC = dc
	t.mu.Unlock()
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if cb := t.frameCallback(); cb != nil {
			cb(msg.Data)
		}
	})
}

// SetInputChannel sets or replaces the input channel.
func (t *DataChannelTransport) SetInputChannel(dc channel) {
	t.mu.Lock()
	t.inputDC = dc
	t.mu.Unlock()
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if cb := t.inputCallback(); cb != nil {
			cb(msg.Data)
		}
	})
}

// SetControlChannel sets or replaces the control channel.
func (t *DataChannelTransport) SetControlChannel(dc channel) {
	t.mu.Lock()
	t.controlDC = dc
	t.mu.Unlock()
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		cm, err := decodeControl(msg.Data)
		if err != nil {
			logrus.Warnf("control channel: %v", err)
			return
		}
		if cb := t.controlCallback(); cb != nil {
			cb(cm)
		}
	})
}

func (t *DataChannelTransport) frames() channel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.framesDC
}

func (t *DataChannelTransport) input() channel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inputDC
}

func (t *DataChannelTransport) control() channel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.controlDC
}

func (t *DataChannelTransport) frameCallback() func([]byte) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onFrame
}

func (t *DataChannelTransport) inputCallback() func([]byte) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onInput
}

func (t *DataChannelTransport) controlCallback() func(ControlMessage) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onControl
}
