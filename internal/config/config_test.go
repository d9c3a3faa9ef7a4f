package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestStreamerDefaults(t *testing.T) {
	cfg, err := ParseStreamerFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSignalingURL, cfg.SignalingURL)
	assert.Equal(t, 70, cfg.Quality)
	assert.Equal(t, 16666*time.Microsecond, cfg.FrameInterval)
	assert.True(t, strings.HasPrefix(cfg.ID, "drc-"))
	assert.Len(t, cfg.ID, len("drc-")+8)
	assert.Nil(t, cfg.STUN)
}

func TestStreamerFlags(t *testing.T) {
	cfg, err := ParseStreamerFlags([]string{
		"-id", "console", "-quality", "40", "-interval", "33ms",
		"-stun", "stun:a:1, stun:b:2", "-debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.ID)
	assert.Equal(t, 40, cfg.Quality)
	assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, []string{"stun:a:1", "stun:b:2"}, cfg.STUN)
	assert.True(t, cfg.Debug)
}

func TestFileThenFlags(t *testing.T) {
	path := writeConfig(t, `
signaling: ws://relay:9000
id: from-file
quality: 55
interval: 20ms
stun: [stun:file:1]
`)
	cfg, err := ParseStreamerFlags([]string{"-config", path, "-quality", "90"})
	require.NoError(t, err)
	assert.Equal(t, "ws://relay:9000", cfg.SignalingURL)
	assert.Equal(t, "from-file", cfg.ID)
	assert.Equal(t, 90, cfg.Quality)
	assert.Equal(t, 20*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, []string{"stun:file:1"}, cfg.STUN)

	cfg, err = ParseStreamerFlags([]string{"-stun", "", "-config", path})
	require.NoError(t, err)
	assert.Empty(t, cfg.STUN)
}

func TestBadConfig(t *testing.T) {
	_, err := ParseStreamerFlags([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	_, err = ParseStreamerFlags([]string{"-config", writeConfig(t, "quality: [")})
	assert.Error(t, err)

	_, err = ParseStreamerFlags([]string{"-interval", "0s"})
	assert.Error(t, err)

	_, err = ParseStreamerFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestPadFlags(t *testing.T) {
	cfg, err := ParsePadFlags([]string{"-streamer", "drc-1", "-scale", "1.5"})
	require.NoError(t, err)
	assert.Equal(t, "drc-1", cfg.StreamerID)
	assert.Equal(t, 1.5, cfg.Scale)
	assert.True(t, strings.HasPrefix(cfg.ID, "pad-"))

	_, err = ParsePadFlags([]string{"-scale", "-1"})
	assert.Error(t, err)
}

func TestSignalingFlags(t *testing.T) {
	cfg, err := ParseSignalingFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)

	path := writeConfig(t, "addr: 127.0.0.1:7000\ndebug: true\n")
	cfg, err = ParseSignalingFlags([]string{"-config", path})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.True(t, cfg.Debug)
}
