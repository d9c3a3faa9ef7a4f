package peer

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"
)

// ICEServers is the default ICE server configuration.
var ICEServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302", "stun:stun1.l.google.com:19302"}},
}

// ICEServersFromURLs builds an ICE configuration from STUN URLs. A nil
// slice selects ICEServers; an empty one disables STUN.
func ICEServersFromURLs(urls []string) []webrtc.ICEServer {
	switch {
	case urls == nil:
		return nil
	case len(urls) == 0:
		return []webrtc.ICEServer{}
	}
	return []webrtc.ICEServer{{URLs: urls}}
}

// Signaler is the subset of the signaling client a peer needs.
type Signaler interface {
	SendOffer(target string, payload json.RawMessage) error
	SendAnswer(target string, payload json.RawMessage) error
	SendICECandidate(target string, payload json.RawMessage) error
}

// StateFunc observes peer connection state changes.
type StateFunc func(state webrtc.PeerConnectionState)

// NewPeerConnection creates a configured PeerConnection. A nil iceServers
// uses ICEServers.
func NewPeerConnection(iceServers []webrtc.ICEServer, log *logrus.Entry, onState StateFunc) (*webrtc.PeerConnection, error) {
	if iceServers == nil {
		iceServers = ICEServers
	}
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Infof("peer connection state: %s", state.String())
		if onState != nil {
			onState(state)
		}
	})
	return pc, nil
}

// candidateQueue holds remote candidates that arrive before the remote
// description has been applied.
type candidateQueue struct {
	mu      sync.Mutex
	ready   bool
	pending []webrtc.ICECandidateInit
}

func (q *candidateQueue) add(pc *webrtc.PeerConnection, payload json.RawMessage) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return fmt.Errorf("decode ICE candidate: %w", err)
	}
	q.mu.Lock()
	if !q.ready {
		q.pending = append(q.pending, candidate)
		q.mu.Unlock()
		return nil
	}
	q.mu.Unlock()
	return pc.AddICECandidate(candidate)
}

// flush marks the remote description as set and applies queued candidates.
func (q *candidateQueue) flush(pc *webrtc.PeerConnection) error {
	q.mu.Lock()
	q.ready = true
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, c := range pending {
		if err := pc.AddICECandidate(c); err != nil {
			return err
		}
	}
	return nil
}

func trickle(pc *webrtc.PeerConnection, sig Signaler, log *logrus.Entry, target func() string) {
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		to := target()
		if to == "" {
			return
		}
		data, err := json.Marshal(c.ToJSON())
		if err != nil {
			log.Warnf("marshal ICE candidate: %v", err)
			return
		}
		if err := sig.SendICECandidate(to, data); err != nil {
			log.Debugf("send ICE candidate: %v", err)
		}
	})
}
