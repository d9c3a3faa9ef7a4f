// Package streamer owns the device session with a pad: it registers with
// the signaling relay, answers the pad's WebRTC offer, keeps the latest
// input snapshot and pushes encoded video frames.
package streamer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/junsooki/drchello/internal/encoder"
	"github.com/junsooki/drchello/internal/input"
	"github.com/junsooki/drchello/internal/peer"
	"github.com/junsooki/drchello/internal/screen"
	"github.com/junsooki/drchello/internal/signaling"
	"github.com/junsooki/drchello/internal/transport"
)

// ErrNoPad is returned when no pad is attached to the session.
var ErrNoPad = errors.New("streamer: no pad connected")

// ErrStopped is returned by Start after Stop.
var ErrStopped = errors.New("streamer: stopped")

// RegisterTimeout bounds how long Start waits for the relay to confirm.
const RegisterTimeout = 5 * time.Second

// Config configures a Streamer.
type Config struct {
	SignalingURL string
	ID           string
	Quality      int
	// ICEServers defaults to peer.ICEServers when nil.
	ICEServers []webrtc.ICEServer
}

// Stats counts frames handed to PushVidFrame.
type Stats struct {
	Pushed  uint64
	Sent    uint64
	Dropped uint64
}

// link is what the streamer needs from an attached pad.
type link interface {
	transport.FrameSender
	transport.ControlSender
	Ready() bool
}

// padPeer is an attached pad session.
type padPeer interface {
	PadID() string
	HandleOffer(payload json.RawMessage) error
	HandleICECandidate(payload json.RawMessage) error
	Close()
}

// Streamer is the console end of a device session.
type Streamer struct {
	cfg Config
	log *logrus.Entry

	encMu sync.Mutex
	enc   encoder.Encoder

	snapshot input.Snapshot

	mu      sync.Mutex
	sig     *signaling.Client
	peer    padPeer
	link    link
	stopped bool

	pushed, sent, dropped atomic.Uint64

	newPeer func(s *Streamer, padID string) (padPeer, link, error)
}

// New creates a Streamer. It does not touch the network until Start.
func New(cfg Config) *Streamer {
	return &Streamer{
		cfg:     cfg,
		log:     logrus.WithField("streamer", cfg.ID),
		enc:     encoder.NewJPEGEncoder(cfg.Quality),
		newPeer: newWebRTCPeer,
	}
}

func newWebRTCPeer(s *Streamer, padID string) (padPeer, link, error) {
	var self atomic.Pointer[peer.Streamer]
	p, err := peer.NewStreamer(s.signaler(), padID, s.cfg.ICEServers, func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
			if p := self.Load(); p != nil {
				s.detach(p)
			}
		}
	})
	if err != nil {
		return nil, nil, err
	}
	self.Store(p)
	p.Transport().OnInput(func(data []byte) {
		s.handleInput(p, data)
	})
	return p, p.Transport(), nil
}

func (s *Streamer) signaler() peer.Signaler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sig
}

// ID returns the id pads use to reach this streamer.
func (s *Streamer) ID() string {
	return s.cfg.ID
}

// Start registers with the signaling relay and begins accepting pads. It
// returns once the relay confirmed the registration.
func (s *Streamer) Start(ctx context.Context) error {
	registered := make(chan struct{}, 1)
	rejected := make(chan string, 1)

	sig := signaling.NewClient(s.cfg.SignalingURL, s.cfg.ID, signaling.ClientTypeStreamer, signaling.Handler{
		OnRegistered: func() {
			registered <- struct{}{}
		},
		OnOffer: s.handleOffer,
		OnICECandidate: func(from string, payload json.RawMessage) {
			s.handleCandidate(from, payload)
		},
		OnError: func(msg string) {
			select {
			case rejected <- msg:
			default:
			}
			s.log.Warnf("signaling error: %s", msg)
		},
		OnDisconnected: func(err error) {
			s.log.Warnf("lost signaling connection: %v", err)
		},
	})

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.sig = sig
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, RegisterTimeout)
	defer cancel()

	if err := sig.Connect(ctx); err != nil {
		return err
	}
	select {
	case <-registered:
		s.log.Infof("registered with signaling server %s", s.cfg.SignalingURL)
		return nil
	case msg := <-rejected:
		sig.Close()
		return fmt.Errorf("signaling rejected registration: %s", msg)
	case <-ctx.Done():
		sig.Close()
		return fmt.Errorf("wait for registration: %w", ctx.Err())
	}
}

func (s *Streamer) handleOffer(from string, payload json.RawMessage) {
	log := s.log.WithField("pad", from)
	log.Info("received offer")

	p, l, err := s.newPeer(s, from)
	if err != nil {
		log.Errorf("create peer: %v", err)
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		p.Close()
		return
	}
	old := s.peer
	s.peer, s.link = p, l
	s.snapshot.Invalidate()
	s.mu.Unlock()

	if old != nil {
		log.Infof("replacing pad %s", old.PadID())
		old.Close()
	}

	if err := p.HandleOffer(payload); err != nil {
		log.Errorf("handle offer: %v", err)
		s.detach(p)
	}
}

func (s *Streamer) handleCandidate(from string, payload json.RawMessage) {
	s.mu.Lock()
	p := s.peer
	s.mu.Unlock()
	if p == nil || p.PadID() != from {
		return
	}
	if err := p.HandleICECandidate(payload); err != nil {
		s.log.WithField("pad", from).Warnf("handle ICE candidate: %v", err)
	}
}

// handleInput stores input sent by from. Messages from a pad that has
// since been replaced or detached are dropped.
func (s *Streamer) handleInput(from padPeer, data []byte) {
	var d input.Data
	if err := json.Unmarshal(data, &d); err != nil {
		s.log.Debugf("unmarshal input: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer != from {
		return
	}
	s.snapshot.Store(d)
}

// detach drops p if it is still the attached pad.
func (s *Streamer) detach(p padPeer) {
	s.mu.Lock()
	if s.peer != p {
		s.mu.Unlock()
		return
	}
	s.peer, s.link = nil, nil
	s.snapshot.Invalidate()
	s.mu.Unlock()

	s.log.WithField("pad", p.PadID()).Info("pad detached")
	p.Close()
}

func (s *Streamer) currentLink() link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link
}

// PollInput returns the latest input snapshot. Valid is false while no pad
// is attached.
func (s *Streamer) PollInput() input.Data {
	if s.currentLink() == nil {
		return input.Data{}
	}
	return s.snapshot.Load()
}

// PushVidFrame encodes a raw w*h frame in format f and sends it to the pad.
func (s *Streamer) PushVidFrame(pix []byte, w, h int, f screen.PixelFormat) error {
	s.pushed.Add(1)
	l := s.currentLink()
	if l == nil || !l.Ready() {
		s.dropped.Add(1)
		return ErrNoPad
	}

	s.encMu.Lock()
	data, err := s.enc.Encode(pix, w, h, f)
	s.encMu.Unlock()
	if err != nil {
		s.dropped.Add(1)
		return err
	}

	if err := l.SendFrame(data); err != nil {
		s.dropped.Add(1)
		return fmt.Errorf("send frame: %w", err)
	}
	s.sent.Add(1)
	return nil
}

// ShutdownPad asks the attached pad to power off.
func (s *Streamer) ShutdownPad() error {
	l := s.currentLink()
	if l == nil {
		return ErrNoPad
	}
	return l.SendControl(transport.ControlMessage{Type: transport.ControlShutdown})
}

// Stats returns frame counters.
func (s *Streamer) Stats() Stats {
	return Stats{
		Pushed:  s.pushed.Load(),
		Sent:    s.sent.Load(),
		Dropped: s.dropped.Load(),
	}
}

// Stop closes the pad session and the signaling connection. It is safe to
// call more than once.
func (s *Streamer) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	p, sig := s.peer, s.sig
	s.peer, s.link = nil, nil
	s.mu.Unlock()

	if p != nil {
		p.Close()
	}
	if sig != nil {
		sig.Close()
	}
	s.snapshot.Invalidate()
	st := s.Stats()
	s.log.Infof("streamer stopped: %d frames pushed, %d sent, %d dropped", st.Pushed, st.Sent, st.Dropped)
}
