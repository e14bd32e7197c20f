// Package logging builds the logger shared by every command.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing to out.
//
// The level comes from LOG_LEVEL (debug, info, warn, error; info otherwise)
// and verbose forces debug. LOG_FORMAT=json switches to structured output.
func New(verbose bool, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}
	return log
}
