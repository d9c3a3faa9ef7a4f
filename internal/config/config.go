package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSignalingURL  = "ws://localhost:8080"
	DefaultFrameInterval = 16666 * time.Microsecond
)

// StreamerConfig configures the console side (the demo binary).
type StreamerConfig struct {
	SignalingURL  string        `yaml:"signaling"`
	ID            string        `yaml:"id"`
	Quality       int           `yaml:"quality"`
	FrameInterval time.Duration `yaml:"interval"`
	STUN          []string      `yaml:"stun"`
	Debug         bool          `yaml:"debug"`
}

// PadConfig configures the pad emulator.
type PadConfig struct {
	SignalingURL string   `yaml:"signaling"`
	ID           string   `yaml:"id"`
	StreamerID   string   `yaml:"streamer"`
	Scale        float64  `yaml:"scale"`
	STUN         []string `yaml:"stun"`
	Debug        bool     `yaml:"debug"`
}

// SignalingConfig configures the signaling relay.
type SignalingConfig struct {
	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"`
}

// ParseStreamerFlags parses flags for the demo binary.
func ParseStreamerFlags(args []string) (*StreamerConfig, error) {
	cfg := &StreamerConfig{
		SignalingURL:  DefaultSignalingURL,
		Quality:       70,
		FrameInterval: DefaultFrameInterval,
	}
	err := parse("drc-helloworld", args, cfg, func(fs *flag.FlagSet, c *StreamerConfig) {
		fs.StringVar(&c.SignalingURL, "signaling", c.SignalingURL, "Signaling server WebSocket URL")
		fs.StringVar(&c.ID, "id", c.ID, "Streamer ID pads connect to (auto-generated if empty)")
		fs.IntVar(&c.Quality, "quality", c.Quality, "JPEG quality (1-100)")
		fs.DurationVar(&c.FrameInterval, "interval", c.FrameInterval, "Sleep between frames")
		fs.Func("stun", "Comma-separated STUN URLs (empty for host candidates only)", listFlag(&c.STUN))
		fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	})
	if err != nil {
		return nil, err
	}
	if cfg.ID == "" {
		cfg.ID = "drc-" + shortID()
	}
	if cfg.FrameInterval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.FrameInterval)
	}
	return cfg, nil
}

// ParsePadFlags parses flags for the pad emulator.
func ParsePadFlags(args []string) (*PadConfig, error) {
	cfg := &PadConfig{
		SignalingURL: DefaultSignalingURL,
		Scale:        1,
	}
	err := parse("drc-pad", args, cfg, func(fs *flag.FlagSet, c *PadConfig) {
		fs.StringVar(&c.SignalingURL, "signaling", c.SignalingURL, "Signaling server WebSocket URL")
		fs.StringVar(&c.ID, "id", c.ID, "Pad ID (auto-generated if empty)")
		fs.StringVar(&c.StreamerID, "streamer", c.StreamerID, "Streamer ID to connect to (first online streamer if empty)")
		fs.Float64Var(&c.Scale, "scale", c.Scale, "Window scale factor")
		fs.Func("stun", "Comma-separated STUN URLs (empty for host candidates only)", listFlag(&c.STUN))
		fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	})
	if err != nil {
		return nil, err
	}
	if cfg.ID == "" {
		cfg.ID = "pad-" + shortID()
	}
	if cfg.Scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", cfg.Scale)
	}
	return cfg, nil
}

// ParseSignalingFlags parses flags for the signaling relay.
func ParseSignalingFlags(args []string) (*SignalingConfig, error) {
	cfg := &SignalingConfig{Addr: ":8080"}
	err := parse("drc-signaling", args, cfg, func(fs *flag.FlagSet, c *SignalingConfig) {
		fs.StringVar(&c.Addr, "addr", c.Addr, "Listen address")
		fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse runs two passes: the first only finds -config, whose YAML is
// loaded over the defaults; the second binds flags to the merged values so
// explicit flags win over the file.
func parse[T any](name string, args []string, cfg *T, register func(*flag.FlagSet, *T)) error {
	scratch := *cfg
	first := flag.NewFlagSet(name, flag.ContinueOnError)
	first.SetOutput(discard{})
	path := first.String("config", "", "")
	register(first, &scratch)
	if err := first.Parse(args); err != nil && err != flag.ErrHelp {
		return err
	}

	if *path != "" {
		if err := LoadFile(*path, cfg); err != nil {
			return err
		}
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String("config", *path, "YAML config file")
	register(fs, cfg)
	return fs.Parse(args)
}

// LoadFile decodes the YAML file at path into cfg. Keys not present in the
// file keep their current values.
func LoadFile(path string, cfg any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// listFlag resets *dst on first use so a flag replaces, not extends, a
// list loaded from the config file.
func listFlag(dst *[]string) func(string) error {
	return func(v string) error {
		*dst = []string{}
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				*dst = append(*dst, s)
			}
		}
		return nil
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
