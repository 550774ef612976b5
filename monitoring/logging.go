// Package monitoring provides component loggers and activity counters for
// disklists.
package monitoring

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Event types attached to every log line as event_type.
const (
	EventOpen    = "open"
	EventClose   = "close"
	EventClear   = "clear"
	EventConcat  = "concat"
	EventCompact = "compact"
	EventCorrupt = "corrupt_record"
)

// Logger writes structured events for one component.
type Logger struct {
	log zerolog.Logger
}

// NewLogger derives a component logger from base.
func NewLogger(base zerolog.Logger, component string) Logger {
	return Logger{
		log: base.With().Str("component", component).Logger(),
	}
}

// With returns a logger that adds key=value to every event.
func (l Logger) With(key, value string) Logger {
	return Logger{log: l.log.With().Str(key, value).Logger()}
}

// Log writes one event. details may be nil.
func (l Logger) Log(level zerolog.Level, eventType string, message string, details map[string]interface{}) {
	e := l.log.WithLevel(level)
	if e == nil {
		return
	}
	e = e.Str("event_type", eventType)
	if len(details) > 0 {
		e = e.Fields(details)
	}
	e.Msg(message)
}

// Error writes an error level event carrying err.
func (l Logger) Error(eventType string, message string, err error) {
	l.log.Error().Str("event_type", eventType).Err(err).Msg(message)
}

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("monitoring: %w", err)
	}
	return lvl, nil
}

// NewConsole returns a human readable logger writing to w, or to stderr when
// w is nil.
func NewConsole(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}
