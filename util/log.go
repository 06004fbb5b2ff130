package util

import (
	"io/ioutil"
	"log"
	"os"
	"strings"

	jww "github.com/spf13/jwalterweatherman"
)

var (
	loggers = map[string]*Logger{}

	// OutThreshold is the default console log level
	OutThreshold = jww.LevelError
)

// Logger wraps a jww notepad to avoid leaking implementation detail
type Logger struct {
	*jww.Notepad
}

// NewLogger creates a logger with the given log area and adds it to the registry
func NewLogger(area string) *Logger {
	notepad := jww.NewNotepad(OutThreshold, jww.LevelFatal, os.Stdout, ioutil.Discard, area, log.Ldate|log.Ltime)
	logger := &Logger{notepad}
	loggers[area] = logger
	return logger
}

// LogLevel sets log level for all loggers
func LogLevel(defaultLevel string, areaLevels map[string]string) {
	OutThreshold = LogLevelToThreshold(defaultLevel)

	for area, logger := range loggers {
		level := OutThreshold
		if s, ok := areaLevels[strings.ToLower(area)]; ok {
			level = LogLevelToThreshold(s)
		}
		logger.SetStdoutThreshold(level)
	}
}

// LogLevelToThreshold converts log level string to a jww threshold
func LogLevelToThreshold(level string) jww.Threshold {
	switch strings.ToUpper(level) {
	case "FATAL":
		return jww.LevelFatal
	case "ERROR":
		return jww.LevelError
	case "WARN":
		return jww.LevelWarn
	case "INFO":
		return jww.LevelInfo
	case "DEBUG":
		return jww.LevelDebug
	case "TRACE":
		return jww.LevelTrace
	default:
		panic("invalid log level " + level)
	}
}
