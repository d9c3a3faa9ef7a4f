package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/junsooki/drchello/internal/config"
	"github.com/junsooki/drchello/internal/signaling"
)

func main() {
	cfg, err := config.ParseSignalingFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	config.SetupLogging(cfg.Debug)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           signaling.NewServer(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("signaling server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logrus.Infof("Received signal: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Warnf("shutdown: %v", err)
	}
}
