package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/junsooki/drchello/internal/config"
	"github.com/junsooki/drchello/internal/display"
	"github.com/junsooki/drchello/internal/input"
	"github.com/junsooki/drchello/internal/pad"
	"github.com/junsooki/drchello/internal/peer"
)

func main() {
	cfg, err := config.ParsePadFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	config.SetupLogging(cfg.Debug)

	logrus.Info("DRC pad starting")
	logrus.Infof("  Pad ID:    %s", cfg.ID)
	logrus.Infof("  Signaling: %s", cfg.SignalingURL)
	if cfg.StreamerID != "" {
		logrus.Infof("  Streamer:  %s", cfg.StreamerID)
	}

	var client *pad.Client
	disp := display.NewPadDisplay(cfg.Scale, func(d input.Data) {
		if err := client.SendInput(d); err != nil {
			logrus.Debugf("send input: %v", err)
		}
	})

	client = pad.NewClient(pad.Config{
		SignalingURL: cfg.SignalingURL,
		ID:           cfg.ID,
		StreamerID:   cfg.StreamerID,
		ICEServers:   peer.ICEServersFromURLs(cfg.STUN),
		OnShutdown:   disp.Close,
	}, disp)

	if err := client.Start(context.Background()); err != nil {
		logrus.Fatalf("signaling connect: %v", err)
	}
	defer client.Stop()

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if err := disp.Run(); err != nil {
		logrus.Errorf("display: %v", err)
	}
	logrus.Info("pad powered off")
}
