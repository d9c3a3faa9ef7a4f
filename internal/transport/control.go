package transport

import (
	"encoding/json"
	"fmt"
)

// ControlType identifies a control message.
type ControlType string

const (
	// ControlShutdown asks the pad to power off.
	ControlShutdown ControlType = "shutdown"
)

// ControlMessage is the wire format of the control data channel.
type ControlMessage struct {
	Type ControlType `json:"type"`
}

func decodeControl(data []byte) (ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("decode control message: %w", err)
	}
	if msg.Type == "" {
		return msg, fmt.Errorf("decode control message: missing type")
	}
	return msg, nil
}
