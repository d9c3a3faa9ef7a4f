package peer

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noICE disables STUN so tests never leave the host.
var noICE = []webrtc.ICEServer{}

type sent struct {
	kind    string
	target  string
	payload json.RawMessage
}

type fakeSignaler struct {
	mu  sync.Mutex
	out []sent
}

func (f *fakeSignaler) record(kind, target string, payload json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, sent{kind, target, payload})
	return nil
}

func (f *fakeSignaler) SendOffer(target string, p json.RawMessage) error {
	return f.record("offer", target, p)
}

func (f *fakeSignaler) SendAnswer(target string, p json.RawMessage) error {
	return f.record("answer", target, p)
}

func (f *fakeSignaler) SendICECandidate(target string, p json.RawMessage) error {
	return f.record("candidate", target, p)
}

func (f *fakeSignaler) first(kind string) (sent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.out {
		if s.kind == kind {
			return s, true
		}
	}
	return sent{}, false
}

func TestOfferAnswerNegotiatesDataChannels(t *testing.T) {
	padSig := &fakeSignaler{}
	pad, err := NewPad(padSig, "drc-1", noICE, nil)
	require.NoError(t, err)
	defer pad.Close()

	require.NoError(t, pad.Connect())
	offer, ok := padSig.first("offer")
	require.True(t, ok)
	assert.Equal(t, "drc-1", offer.target)

	var offerDesc webrtc.SessionDescription
	require.NoError(t, json.Unmarshal(offer.payload, &offerDesc))
	assert.Equal(t, webrtc.SDPTypeOffer, offerDesc.Type)
	assert.Contains(t, offerDesc.SDP, "m=application")

	strSig := &fakeSignaler{}
	str, err := NewStreamer(strSig, "pad-1", noICE, nil)
	require.NoError(t, err)
	defer str.Close()
	assert.Equal(t, "pad-1", str.PadID())

	require.NoError(t, str.HandleOffer(offer.payload))
	answer, ok := strSig.first("answer")
	require.True(t, ok)
	assert.Equal(t, "pad-1", answer.target)

	var answerDesc webrtc.SessionDescription
	require.NoError(t, json.Unmarshal(answer.payload, &answerDesc))
	assert.Equal(t, webrtc.SDPTypeAnswer, answerDesc.Type)
	assert.Contains(t, answerDesc.SDP, "m=application")

	require.NoError(t, pad.HandleAnswer(answer.payload))
}

func TestPadHasChannelsBeforeOpen(t *testing.T) {
	pad, err := NewPad(&fakeSignaler{}, "drc", noICE, nil)
	require.NoError(t, err)
	defer pad.Close()

	// Channels exist but are still connecting.
	assert.False(t, pad.Transport().Ready())
	assert.Error(t, pad.Transport().SendInput([]byte("{}")))
}

func TestBadPayloads(t *testing.T) {
	str, err := NewStreamer(&fakeSignaler{}, "pad", noICE, nil)
	require.NoError(t, err)
	defer str.Close()

	assert.Error(t, str.HandleOffer(json.RawMessage(`not json`)))
	assert.Error(t, str.HandleICECandidate(json.RawMessage(`[]`)))

	pad, err := NewPad(&fakeSignaler{}, "drc", noICE, nil)
	require.NoError(t, err)
	defer pad.Close()
	assert.Error(t, pad.HandleAnswer(json.RawMessage(`{`)))
}

func TestCandidatesQueuedUntilRemoteDescription(t *testing.T) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	require.NoError(t, err)
	defer pc.Close()

	var q candidateQueue
	payload, err := json.Marshal(webrtc.ICECandidateInit{Candidate: "candidate:1 1 udp 2130706431 127.0.0.1 5000 typ host"})
	require.NoError(t, err)

	require.NoError(t, q.add(pc, payload))
	require.NoError(t, q.add(pc, payload))
	assert.Len(t, q.pending, 2)
	assert.False(t, q.ready)
}

func TestICEServersFromURLs(t *testing.T) {
	assert.Nil(t, ICEServersFromURLs(nil))
	assert.Equal(t, []webrtc.ICEServer{}, ICEServersFromURLs([]string{}))
	assert.Equal(t, []webrtc.ICEServer{{URLs: []string{"stun:a:1"}}}, ICEServersFromURLs([]string{"stun:a:1"}))
}
