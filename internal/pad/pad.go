// Package pad is the display end of a device session. It finds a streamer
// through the signaling relay, offers a WebRTC session, hands decoded
// frames to a sink and sends input snapshots back.
package pad

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/junsooki/drchello/internal/decoder"
	"github.com/junsooki/drchello/internal/input"
	"github.com/junsooki/drchello/internal/peer"
	"github.com/junsooki/drchello/internal/signaling"
	"github.com/junsooki/drchello/internal/transport"
)

// KeepaliveInterval is the longest the pad stays silent on the input
// channel while its state does not change.
const KeepaliveInterval = time.Second

// FrameSink shows decoded frames.
type FrameSink interface {
	SetFrame(img *image.RGBA)
}

// Config configures a Client.
type Config struct {
	SignalingURL string
	ID           string
	// StreamerID pins the streamer to connect to. When empty the first
	// online streamer announced by the relay is used.
	StreamerID string
	ICEServers []webrtc.ICEServer
	// OnShutdown is called when the streamer asks the pad to power off.
	OnShutdown func()
}

// Client connects a pad to a streamer.
type Client struct {
	cfg  Config
	sink FrameSink
	dec  decoder.Decoder
	log  *logrus.Entry

	mu       sync.Mutex
	sig      *signaling.Client
	peer     *peer.Pad
	target   string
	lastSent input.Data
	lastAt   time.Time

	now func() time.Time
}

// NewClient creates a pad client that feeds frames to sink.
func NewClient(cfg Config, sink FrameSink) *Client {
	return &Client{
		cfg:  cfg,
		sink: sink,
		dec:  decoder.NewJPEGDecoder(),
		log:  logrus.WithField("pad", cfg.ID),
		now:  time.Now,
	}
}

// Start connects to the signaling relay. The session itself is set up in
// the background once a streamer is known.
func (c *Client) Start(ctx context.Context) error {
	sig := signaling.NewClient(c.cfg.SignalingURL, c.cfg.ID, signaling.ClientTypePad, signaling.Handler{
		OnRegistered: c.onRegistered,
		OnHostsUpdated: func(hosts []signaling.HostInfo) {
			if c.cfg.StreamerID == "" {
				if id := pickHost(hosts); id != "" {
					c.connectTo(id)
				}
			}
		},
		OnAnswer:           c.onAnswer,
		OnICECandidate:     c.onCandidate,
		OnHostDisconnected: c.onHostDisconnected,
		OnError: func(msg string) {
			c.log.Warnf("signaling error: %s", msg)
		},
		OnDisconnected: func(err error) {
			c.log.Warnf("lost signaling connection: %v", err)
		},
	})
	c.mu.Lock()
	c.sig = sig
	c.mu.Unlock()
	return sig.Connect(ctx)
}

func (c *Client) onRegistered() {
	c.log.Info("registered with signaling server")
	if c.cfg.StreamerID != "" {
		c.connectTo(c.cfg.StreamerID)
		return
	}
	if err := c.signaler().RequestHostList(); err != nil {
		c.log.Warnf("request host list: %v", err)
	}
}

func (c *Client) signaler() *signaling.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sig
}

// connectTo offers a session to streamerID unless one is already up.
func (c *Client) connectTo(streamerID string) {
	c.mu.Lock()
	if c.peer != nil {
		c.mu.Unlock()
		return
	}
	log := c.log.WithField("streamer", streamerID)
	p, err := peer.NewPad(c.sig, streamerID, c.cfg.ICEServers, func(state webrtc.PeerConnectionState) {
		c.onPeerState(streamerID, state)
	})
	if err != nil {
		c.mu.Unlock()
		log.Errorf("create peer: %v", err)
		return
	}
	c.peer, c.target = p, streamerID
	c.mu.Unlock()

	p.Transport().OnFrame(c.onFrame)
	p.Transport().OnControl(c.onControl)

	log.Info("connecting to streamer")
	if err := p.Connect(); err != nil {
		log.Errorf("send offer: %v", err)
		c.drop(streamerID)
	}
}

// onPeerState drops the session with streamerID once its connection is
// gone for good.
func (c *Client) onPeerState(streamerID string, state webrtc.PeerConnectionState) {
	switch state {
	case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
		if c.drop(streamerID) {
			c.log.WithField("streamer", streamerID).Infof("session %s", state)
		}
	}
}

// current returns the peer if it belongs to streamerID.
func (c *Client) current(streamerID string) *peer.Pad {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target != streamerID {
		return nil
	}
	return c.peer
}

func (c *Client) onAnswer(from string, payload json.RawMessage) {
	if p := c.current(from); p != nil {
		if err := p.HandleAnswer(payload); err != nil {
			c.log.Errorf("handle answer: %v", err)
		}
	}
}

func (c *Client) onCandidate(from string, payload json.RawMessage) {
	if p := c.current(from); p != nil {
		if err := p.HandleICECandidate(payload); err != nil {
			c.log.Warnf("handle ICE candidate: %v", err)
		}
	}
}

func (c *Client) onHostDisconnected(id string) {
	if c.drop(id) {
		c.log.WithField("streamer", id).Info("streamer went away")
	}
}

// drop closes the session with streamerID. It reports whether there was one.
func (c *Client) drop(streamerID string) bool {
	c.mu.Lock()
	p := c.peer
	if p == nil || c.target != streamerID {
		c.mu.Unlock()
		return false
	}
	c.peer, c.target = nil, ""
	c.mu.Unlock()
	p.Close()
	return true
}

func (c *Client) onFrame(data []byte) {
	img, err := c.dec.Decode(data)
	if err != nil {
		c.log.Debugf("decode frame: %v", err)
		return
	}
	c.sink.SetFrame(img)
}

func (c *Client) onControl(msg transport.ControlMessage) {
	switch msg.Type {
	case transport.ControlShutdown:
		c.log.Info("streamer requested shutdown")
		if c.cfg.OnShutdown != nil {
			c.cfg.OnShutdown()
		}
	default:
		c.log.Debugf("ignoring control message %q", msg.Type)
	}
}

// SendInput forwards d to the streamer if it changed since the last send
// or the keepalive interval elapsed.
func (c *Client) SendInput(d input.Data) error {
	c.mu.Lock()
	p := c.peer
	now := c.now()
	due := !d.Equal(c.lastSent) || now.Sub(c.lastAt) >= KeepaliveInterval
	c.mu.Unlock()
	if p == nil || !due {
		return nil
	}

	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := p.Transport().SendInput(data); err != nil {
		return fmt.Errorf("send input: %w", err)
	}

	c.mu.Lock()
	c.lastSent, c.lastAt = d, now
	c.mu.Unlock()
	return nil
}

// Stop closes the session and the signaling connection.
func (c *Client) Stop() {
	c.mu.Lock()
	p, sig := c.peer, c.sig
	c.peer, c.target = nil, ""
	c.mu.Unlock()
	if p != nil {
		p.Close()
	}
	if sig != nil {
		sig.Close()
	}
}

func pickHost(hosts []signaling.HostInfo) string {
	for _, h := range hosts {
		if h.Online {
			return h.ID
		}
	}
	return ""
}
