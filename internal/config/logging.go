package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger.
func SetupLogging(debug bool) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.Debug("Debug mode activated")
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
