package logging

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Field names that route a zerolog event into the activity log.
const (
	// FieldCategory marks an event for the activity log. Events without it
	// only reach the console and the log file.
	FieldCategory = "category"

	// FieldSuccess promotes an info event to LevelSuccess.
	FieldSuccess = "success"
)

// Categories used across the application.
const (
	CategoryCrew     = "crew"
	CategoryPipeline = "pipeline"
	CategoryAgent    = "agent"
	CategoryTool     = "tool"
	CategoryLLM      = "llm"
	CategoryRouter   = "router"
	CategoryServer   = "server"
	CategoryArchive  = "archive"
	CategoryConfig   = "config"
)

// WithCategory returns a child logger whose events are mirrored into the activity log.
func WithCategory(l zerolog.Logger, category string) zerolog.Logger {
	return l.With().Str(FieldCategory, category).Logger()
}

// Success marks an event as a completed milestone.
func Success(e *zerolog.Event) *zerolog.Event {
	return e.Bool(FieldSuccess, true)
}

// ActivityWriter tees JSON log lines into an ActivityLog while passing every
// write through to the target writer.
type ActivityWriter struct {
	log    *ActivityLog
	target io.Writer
}

// NewActivityWriter wraps target so events carrying a category are recorded in log.
func NewActivityWriter(log *ActivityLog, target io.Writer) *ActivityWriter {
	return &ActivityWriter{log: log, target: target}
}

// Write implements io.Writer.
func (w *ActivityWriter) Write(p []byte) (int, error) {
	w.record(p)
	return w.target.Write(p)
}

// WriteLevel implements zerolog.LevelWriter so level filtering in a
// MultiLevelWriter keeps working for the target.
func (w *ActivityWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	w.record(p)
	if lw, ok := w.target.(zerolog.LevelWriter); ok {
		return lw.WriteLevel(level, p)
	}
	return w.target.Write(p)
}

// record parses the event and appends it. Malformed or uncategorized lines are ignored.
func (w *ActivityWriter) record(p []byte) {
	var fields map[string]any
	if err := json.Unmarshal(p, &fields); err != nil {
		return
	}

	category, _ := fields[FieldCategory].(string)
	if category == "" {
		return
	}

	levelName, _ := fields[zerolog.LevelFieldName].(string)
	success, _ := fields[FieldSuccess].(bool)
	level, ok := activityLevel(levelName, success)
	if !ok {
		return
	}

	msg, _ := fields[zerolog.MessageFieldName].(string)
	if errText, ok := fields[zerolog.ErrorFieldName].(string); ok && errText != "" {
		if msg == "" {
			msg = errText
		} else {
			msg += ": " + errText
		}
	}

	entry := Entry{Level: level, Category: category, Message: FilterSensitiveValue(msg)}
	if ts, ok := fields[zerolog.TimestampFieldName].(string); ok {
		if parsed, err := time.Parse(zerolog.TimeFieldFormat, ts); err == nil {
			entry.Timestamp = parsed
		}
	}
	w.log.Append(entry)
}

// activityLevel maps zerolog levels onto activity levels. Debug and trace
// events stay out of the activity log.
func activityLevel(name string, success bool) (Level, bool) {
	switch name {
	case zerolog.LevelInfoValue:
		if success {
			return LevelSuccess, true
		}
		return LevelInfo, true
	case zerolog.LevelWarnValue:
		return LevelWarning, true
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return LevelError, true
	default:
		return "", false
	}
}

var _ zerolog.LevelWriter = (*ActivityWriter)(nil)
