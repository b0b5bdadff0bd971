package logger

import (
	"io"

	log "github.com/sirupsen/logrus"
)

type CustomLogger struct {
	*log.Logger
}

var logLevelMapping = map[string]log.Level{
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
}

// CreateCustomLogger returns a JSON logger writing to out. Unknown levels
// fall back to info.
func CreateCustomLogger(out io.Writer, level string) *CustomLogger {
	logger := log.New()

	logger.SetFormatter(&log.JSONFormatter{})
	logLevel, ok := logLevelMapping[level]
	if !ok {
		logLevel = log.InfoLevel
	}
	logger.SetLevel(logLevel)
	logger.SetOutput(out)

	return &CustomLogger{Logger: logger}
}

func (l CustomLogger) LogDebug(event_name string, message string) {
	l.WithFields(log.Fields{
		"event": event_name,
	}).Debug(message)
}

func (l CustomLogger) LogError(event_name string, message string) {
	l.WithFields(log.Fields{
		"event": event_name,
	}).Error(message)
}
