// Package logging provides the activity log and sensitive data filtering for
// luna's zerolog output.
package logging

import (
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue replaces anything that looks like a credential.
const RedactedValue = "[REDACTED]"

// secretPatterns cover the provider keys luna handles plus generic
// key=value credential assignments.
var secretPatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // compiled once
	regexp.MustCompile(`sk-proj-[a-zA-Z0-9_-]{20,}`), // OpenAI project key
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),        // OpenAI key
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),      // Google (Gemini) key
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_.-]{20,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`),
	regexp.MustCompile(`(?i)(access[_-]?key|secret[_-]?key)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
	regexp.MustCompile(`(?i)(secret|password|passwd|credential)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
}

// secretFieldHints mark a field name as holding a credential when they
// appear anywhere in it, case-insensitively.
var secretFieldHints = []string{ //nolint:gochecknoglobals // fixed list
	"api_key", "apikey", "api-key",
	"access_key", "secret_key", "secret",
	"password", "credential",
	"authorization", "bearer",
}

// ContainsSensitiveData reports whether s matches any credential pattern.
func ContainsSensitiveData(s string) bool {
	return slices.ContainsFunc(secretPatterns, func(re *regexp.Regexp) bool {
		return re.MatchString(s)
	})
}

// FilterSensitiveValue redacts every credential-looking match in value.
func FilterSensitiveValue(value string) string {
	for _, re := range secretPatterns {
		value = re.ReplaceAllString(value, RedactedValue)
	}
	return value
}

// IsSensitiveFieldName reports whether a field called name holds a credential.
func IsSensitiveFieldName(name string) bool {
	lower := strings.ToLower(name)
	return slices.ContainsFunc(secretFieldHints, func(hint string) bool {
		return strings.Contains(lower, hint)
	})
}

// SafeValue is the loggable form of a named value: fully redacted for
// credential fields (unless empty), pattern-filtered otherwise.
func SafeValue(name, value string) string {
	switch {
	case !IsSensitiveFieldName(name):
		return FilterSensitiveValue(value)
	case value == "":
		return ""
	default:
		return RedactedValue
	}
}

// SensitiveDataHook tags events whose message matched a credential pattern.
// Hooks cannot rewrite the message, so the log file is additionally wrapped
// in a FilteringWriter.
type SensitiveDataHook struct{}

func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// FilteringWriter redacts credentials from everything written through it.
type FilteringWriter struct {
	w io.Writer
}

func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write reports len(p) on success even though fewer or more bytes may reach
// the underlying writer after redaction.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(fw.w, FilterSensitiveValue(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
