package streamer_test

import (
	"bytes"
	"context"
	"image"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/drchello/internal/input"
	"github.com/junsooki/drchello/internal/pad"
	"github.com/junsooki/drchello/internal/screen"
	"github.com/junsooki/drchello/internal/signaling"
	"github.com/junsooki/drchello/internal/streamer"
)

type frameSink chan *image.RGBA

func (f frameSink) SetFrame(img *image.RGBA) {
	select {
	case f <- img:
	default:
	}
}

// TestSessionWithPad runs a streamer and a pad client against a real relay
// and exercises all three data channels.
func TestSessionWithPad(t *testing.T) {
	srv := httptest.NewServer(signaling.NewServer())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx := context.Background()

	s := streamer.New(streamer.Config{SignalingURL: url, ID: "drc-session", Quality: 90, ICEServers: []webrtc.ICEServer{}})
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	frames := make(frameSink, 1)
	shutdown := make(chan struct{}, 1)
	c := pad.NewClient(pad.Config{
		SignalingURL: url,
		ID:           "pad-session",
		StreamerID:   "drc-session",
		ICEServers:   []webrtc.ICEServer{},
		OnShutdown: func() {
			select {
			case shutdown <- struct{}{}:
			default:
			}
		},
	}, frames)
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	red := bytes.Repeat([]byte{0, 0, 255, 0}, screen.Pixels)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(10 * time.Second)

	var img *image.RGBA
	for img == nil {
		select {
		case img = <-frames:
		case <-tick.C:
			_ = s.PushVidFrame(red, screen.Width, screen.Height, screen.BGRA)
		case <-deadline:
			t.Fatalf("no frame reached the pad, stats %+v", s.Stats())
		}
	}
	assert.Equal(t, screen.Width, img.Bounds().Dx())
	assert.Equal(t, screen.Height, img.Bounds().Dy())
	px := img.RGBAAt(screen.Width/2, screen.Height/2)
	assert.Greater(t, px.R, uint8(200))
	assert.Less(t, px.G, uint8(30))
	assert.Less(t, px.B, uint8(30))
	stats := s.Stats()
	assert.GreaterOrEqual(t, stats.Sent, uint64(1))
	assert.Equal(t, stats.Pushed, stats.Sent+stats.Dropped)

	sent := input.Data{Valid: true, Buttons: input.ButtonA, LeftStickX: 0.5}
	var got input.Data
	for !got.Valid {
		select {
		case <-tick.C:
			_ = c.SendInput(sent)
			got = s.PollInput()
		case <-deadline:
			t.Fatal("input never reached the streamer")
		}
	}
	assert.True(t, got.Pressed(input.ButtonA))
	assert.False(t, got.Pressed(input.ButtonHome))
	assert.Equal(t, float32(0.5), got.LeftStickX)

	require.NoError(t, s.ShutdownPad())
	select {
	case <-shutdown:
	case <-deadline:
		t.Fatal("pad never saw the shutdown request")
	}
}
