package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It is usable before InitLogging runs.
var Logger = logrus.New()

// InitLogging initializes logging
func InitLogging(level, format string) {
	Logger.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)
}

// Infof logs info level messages
func Infof(format string, v ...interface{}) {
	Logger.Infof(format, v...)
}

// Warnf logs warning level messages
func Warnf(format string, v ...interface{}) {
	Logger.Warnf(format, v...)
}

// Errorf logs error level messages
func Errorf(format string, v ...interface{}) {
	Logger.Errorf(format, v...)
}

// WithFields returns an entry carrying the given structured fields
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(logrus.Fields(fields))
}
