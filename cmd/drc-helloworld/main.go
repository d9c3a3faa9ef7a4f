// A simple demo that fills the pad's screen with a color the pad's controls
// move around.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/junsooki/drchello/internal/config"
	"github.com/junsooki/drchello/internal/helloworld"
	"github.com/junsooki/drchello/internal/peer"
	"github.com/junsooki/drchello/internal/screen"
	"github.com/junsooki/drchello/internal/streamer"
)

func main() {
	cfg, err := config.ParseStreamerFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	config.SetupLogging(cfg.Debug)
	os.Exit(run(cfg))
}

// run drives the demo and returns the process exit code.
func run(cfg *config.StreamerConfig) int {
	logrus.Info("Now running drc_helloworld...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := streamer.New(streamer.Config{
		SignalingURL: cfg.SignalingURL,
		ID:           cfg.ID,
		Quality:      cfg.Quality,
		ICEServers:   peer.ICEServersFromURLs(cfg.STUN),
	})
	if err := s.Start(ctx); err != nil {
		logrus.Errorf("Unable to start streamer: %v", err)
		return 1
	}

	logrus.Infof("Screen size: %d * %d", screen.Width, screen.Height)
	logrus.Infof("Streamer ready. Connect a pad with: drc-pad -streamer %s", s.ID())

	helloworld.New().Run(ctx, s, cfg.FrameInterval)
	return 0
}
