package logging

import (
	"strings"

	"job_tracker/internal/config"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger from cfg.
func Setup(cfg config.LogConfig) {
	if strings.EqualFold(cfg.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithError(err).Warnf("Unknown log level %q, falling back to info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
