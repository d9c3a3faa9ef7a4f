package peer

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/junsooki/drchello/internal/transport"
)

// Streamer is the console side of a session. It answers the pad's offer
// and receives the data channels the pad created.
type Streamer struct {
	pc         *webrtc.PeerConnection
	sig        Signaler
	transport  *transport.DataChannelTransport
	candidates candidateQueue
	padID      string
	log        *logrus.Entry
}

// NewStreamer creates the answering peer for the pad padID.
func NewStreamer(sig Signaler, padID string, iceServers []webrtc.ICEServer, onState StateFunc) (*Streamer, error) {
	log := logrus.WithField("pad", padID)
	pc, err := NewPeerConnection(iceServers, log, onState)
	if err != nil {
		return nil, err
	}

	s := &Streamer{
		pc:        pc,
		sig:       sig,
		transport: transport.NewDataChannelTransport(),
		padID:     padID,
		log:       log,
	}

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		label := dc.Label()
		dc.OnOpen(func() {
			log.Debugf("%s data channel open", label)
		})
		if !s.transport.Attach(dc) {
			log.Warnf("ignoring unexpected data channel %q", label)
		}
	})
	trickle(pc, sig, log, func() string { return s.padID })

	return s, nil
}

// Transport returns the transport for sending frames and receiving input.
func (s *Streamer) Transport() *transport.DataChannelTransport {
	return s.transport
}

// PadID returns the id of the pad this peer answers.
func (s *Streamer) PadID() string {
	return s.padID
}

// HandleOffer applies the pad's offer and sends back an answer.
func (s *Streamer) HandleOffer(payload json.RawMessage) error {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return fmt.Errorf("decode offer: %w", err)
	}
	if err := s.pc.SetRemoteDescription(offer); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	if err := s.candidates.flush(s.pc); err != nil {
		return fmt.Errorf("add queued ICE candidate: %w", err)
	}

	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	answerJSON, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return s.sig.SendAnswer(s.padID, answerJSON)
}

// HandleICECandidate adds a remote ICE candidate.
func (s *Streamer) HandleICECandidate(payload json.RawMessage) error {
	return s.candidates.add(s.pc, payload)
}

// Close shuts down the peer connection.
func (s *Streamer) Close() {
	if s.pc != nil {
		if err := s.pc.Close(); err != nil {
			s.log.Debugf("close peer connection: %v", err)
		}
	}
}
