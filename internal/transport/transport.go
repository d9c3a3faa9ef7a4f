package transport

// Data channel labels. The pad creates all three before sending its offer.
const (
	LabelFrames  = "frames"
	LabelInput   = "input"
	LabelControl = "control"
)

// FrameSender sends encoded video frames.
type FrameSender interface {
	SendFrame(data []byte) error
}

// FrameReceiver receives encoded video frames.
type FrameReceiver interface {
	OnFrame(callback func(data []byte))
}

// InputSender sends serialized input snapshots.
type InputSender interface {
	SendInput(data []byte) error
}

// InputReceiver receives serialized input snapshots.
type InputReceiver interface {
	OnInput(callback func(data []byte))
}

// ControlSender sends session control messages.
type ControlSender interface {
	SendControl(msg ControlMessage) error
}
