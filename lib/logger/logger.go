// Package logger builds the structured logger shared by the registry, the
// audit log sink and the demo server: logrus with JSON output and stable
// field names, so field safety events line up with the rest of the
// platform's log pipeline.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a logger at the given level. Unknown levels fall back to
// info rather than failing startup.
func New(level string) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)

	return log
}

// WithComponent tags entries with the emitting component name.
func WithComponent(log *logrus.Logger, component string) *logrus.Entry {
	return log.WithField("component", component)
}
