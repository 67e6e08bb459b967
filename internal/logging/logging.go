// Package logging configures the process-wide zerolog logger and hands out
// component loggers.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultVerbosity applies until Setup is called by the command line.
const defaultVerbosity = 0

var (
	setupMu sync.Mutex
	output  io.Writer = os.Stderr
)

func init() {
	Setup(defaultVerbosity, true)
}

// Setup configures the global logger based on verbosity level.
// 0 = warn, 1 = info, 2 = debug, 3+ = trace.
func Setup(verbosity int, noColor bool) {
	setupMu.Lock()
	defer setupMu.Unlock()

	zerolog.SetGlobalLevel(levelFor(verbosity))

	console := zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}
	logger := zerolog.New(console).With().Timestamp().Logger()
	if verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger

	log.Debug().Int("verbosity", verbosity).Msg("logger initialized")
}

// SetOutput redirects log output, used by tests and the quiet flag.
// Call Setup afterwards for the change to take effect. A nil writer restores
// stderr.
func SetOutput(w io.Writer) {
	setupMu.Lock()
	defer setupMu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
}

func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// GetLogger returns a logger tagged with the given component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("operation completed")
	}
}
