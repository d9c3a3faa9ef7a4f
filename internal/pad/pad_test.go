package pad

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/drchello/internal/encoder"
	"github.com/junsooki/drchello/internal/input"
	"github.com/junsooki/drchello/internal/screen"
	"github.com/junsooki/drchello/internal/signaling"
	"github.com/junsooki/drchello/internal/transport"
)

type sink struct {
	mu     sync.Mutex
	frames []*image.RGBA
}

func (s *sink) SetFrame(img *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, img)
}

func relayURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(signaling.NewServer())
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

type offer struct {
	from    string
	payload json.RawMessage
}

// fakeStreamer registers as a streamer and records offers.
func fakeStreamer(t *testing.T, url, id string) <-chan offer {
	t.Helper()
	offers := make(chan offer, 4)
	registered := make(chan struct{}, 1)
	c := signaling.NewClient(url, id, signaling.ClientTypeStreamer, signaling.Handler{
		OnRegistered: func() { registered <- struct{}{} },
		OnOffer:      func(from string, p json.RawMessage) { offers <- offer{from, p} },
	})
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(c.Close)
	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("fake streamer not registered")
	}
	return offers
}

func waitOffer(t *testing.T, offers <-chan offer) offer {
	t.Helper()
	select {
	case o := <-offers:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("no offer received")
	}
	return offer{}
}

func assertDataChannelOffer(t *testing.T, o offer) {
	t.Helper()
	var desc webrtc.SessionDescription
	require.NoError(t, json.Unmarshal(o.payload, &desc))
	assert.Equal(t, webrtc.SDPTypeOffer, desc.Type)
	assert.Contains(t, desc.SDP, "m=application")
}

func TestConnectsToPinnedStreamer(t *testing.T) {
	url := relayURL(t)
	offers := fakeStreamer(t, url, "drc-pinned")

	c := NewClient(Config{SignalingURL: url, ID: "pad-1", StreamerID: "drc-pinned", ICEServers: []webrtc.ICEServer{}}, &sink{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	o := waitOffer(t, offers)
	assert.Equal(t, "pad-1", o.from)
	assertDataChannelOffer(t, o)
}

func TestPicksFirstOnlineStreamer(t *testing.T) {
	url := relayURL(t)

	c := NewClient(Config{SignalingURL: url, ID: "pad-2", ICEServers: []webrtc.ICEServer{}}, &sink{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	// Registered after the pad, so it is announced through hosts-updated.
	offers := fakeStreamer(t, url, "drc-late")
	o := waitOffer(t, offers)
	assert.Equal(t, "pad-2", o.from)
}

func TestPickHost(t *testing.T) {
	assert.Equal(t, "", pickHost(nil))
	assert.Equal(t, "b", pickHost([]signaling.HostInfo{{ID: "a"}, {ID: "b", Online: true}, {ID: "c", Online: true}}))
}

func TestFramesReachSink(t *testing.T) {
	s := &sink{}
	c := NewClient(Config{ID: "pad"}, s)

	pix := bytes.Repeat([]byte{0, 0, 255, 0}, 8*8)
	data, err := encoder.NewJPEGEncoder(90).Encode(pix, 8, 8, screen.BGRA)
	require.NoError(t, err)

	c.onFrame(data)
	c.onFrame([]byte("corrupt"))

	require.Len(t, s.frames, 1)
	assert.Equal(t, 8, s.frames[0].Bounds().Dx())
	assert.Greater(t, s.frames[0].RGBAAt(4, 4).R, uint8(235))
}

func TestShutdownControl(t *testing.T) {
	calls := 0
	c := NewClient(Config{ID: "pad", OnShutdown: func() { calls++ }}, &sink{})
	c.onControl(transport.ControlMessage{Type: transport.ControlShutdown})
	c.onControl(transport.ControlMessage{Type: "reboot"})
	assert.Equal(t, 1, calls)
}

func TestSendInputWithoutSession(t *testing.T) {
	c := NewClient(Config{ID: "pad"}, &sink{})
	assert.NoError(t, c.SendInput(input.Data{Valid: true, Buttons: input.ButtonA}))
}

func TestDropIgnoresOtherStreamer(t *testing.T) {
	c := NewClient(Config{ID: "pad"}, &sink{})
	assert.False(t, c.drop("nobody"))
	assert.Nil(t, c.current("nobody"))
}

func TestLostConnectionDropsSession(t *testing.T) {
	for _, state := range []webrtc.PeerConnectionState{
		webrtc.PeerConnectionStateDisconnected,
		webrtc.PeerConnectionStateFailed,
		webrtc.PeerConnectionStateClosed,
	} {
		t.Run(state.String(), func(t *testing.T) {
			url := relayURL(t)
			offers := fakeStreamer(t, url, "drc-lost")

			c := NewClient(Config{SignalingURL: url, ID: "pad-lost", StreamerID: "drc-lost", ICEServers: []webrtc.ICEServer{}}, &sink{})
			require.NoError(t, c.Start(context.Background()))
			defer c.Stop()
			waitOffer(t, offers)

			c.onPeerState("drc-lost", webrtc.PeerConnectionStateConnecting)
			require.NotNil(t, c.current("drc-lost"))

			c.onPeerState("drc-lost", state)
			assert.Nil(t, c.current("drc-lost"))
		})
	}
}
