package peer

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/junsooki/drchello/internal/transport"
)

// Pad is the display side of a session. It creates the data channels and
// sends the offer.
type Pad struct {
	pc         *webrtc.PeerConnection
	sig        Signaler
	transport  *transport.DataChannelTransport
	candidates candidateQueue
	streamerID string
	log        *logrus.Entry
}

// NewPad creates the offering peer targeting streamerID.
func NewPad(sig Signaler, streamerID string, iceServers []webrtc.ICEServer, onState StateFunc) (*Pad, error) {
	log := logrus.WithField("streamer", streamerID)
	pc, err := NewPeerConnection(iceServers, log, onState)
	if err != nil {
		return nil, err
	}

	p := &Pad{
		pc:         pc,
		sig:        sig,
		transport:  transport.NewDataChannelTransport(),
		streamerID: streamerID,
		log:        log,
	}

	// Stale frames are worthless, so frames are unordered without retransmits.
	framesOrdered := false
	framesMaxRetransmits := uint16(0)
	inputOrdered := true
	channels := []struct {
		label string
		init  *webrtc.DataChannelInit
	}{
		{transport.LabelFrames, &webrtc.DataChannelInit{Ordered: &framesOrdered, MaxRetransmits: &framesMaxRetransmits}},
		{transport.LabelInput, &webrtc.DataChannelInit{Ordered: &inputOrdered}},
		{transport.LabelControl, &webrtc.DataChannelInit{Ordered: &inputOrdered}},
	}
	for _, ch := range channels {
		dc, err := pc.CreateDataChannel(ch.label, ch.init)
		if err != nil {
			pc.Close()
			return nil, fmt.Errorf("create %s data channel: %w", ch.label, err)
		}
		label := ch.label
		dc.OnOpen(func() {
			log.Debugf("%s data channel open", label)
		})
		p.transport.Attach(dc)
	}

	trickle(pc, sig, log, func() string { return p.streamerID })

	return p, nil
}

// Transport returns the transport for receiving frames and sending input.
func (p *Pad) Transport() *transport.DataChannelTransport {
	return p.transport
}

// Connect creates and sends the offer.
func (p *Pad) Connect() error {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}
	offerJSON, err := json.Marshal(offer)
	if err != nil {
		return err
	}
	return p.sig.SendOffer(p.streamerID, offerJSON)
}

// HandleAnswer processes the streamer's answer.
func (p *Pad) HandleAnswer(payload json.RawMessage) error {
	var answer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	if err := p.pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return p.candidates.flush(p.pc)
}

// HandleICECandidate adds a remote ICE candidate.
func (p *Pad) HandleICECandidate(payload json.RawMessage) error {
	return p.candidates.add(p.pc, payload)
}

// Close shuts down the peer connection.
func (p *Pad) Close() {
	if p.pc != nil {
		if err := p.pc.Close(); err != nil {
			p.log.Debugf("close peer connection: %v", err)
		}
	}
}
