package tui

import (
	"context"
	"encoding/json"
	"io"

	"github.com/lunacore/luna/internal/errors"
)

// JSONOutput emits one JSON document per line. Status messages share the
// event envelope; tables and reports are encoded as-is.
type JSONOutput struct {
	enc *json.Encoder
}

// NewJSONOutput returns an Output that writes newline-delimited JSON to w.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{enc: json.NewEncoder(w)}
}

// event is the envelope for status lines. Unused fields are omitted.
type event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Action  string `json:"action,omitempty"`
	URL     string `json:"url,omitempty"`
	Display string `json:"display,omitempty"`
}

// emit ignores encoder errors; status lines have no error path.
func (o *JSONOutput) emit(v any) {
	_ = o.enc.Encode(v) //nolint:errchkjson // status output is best effort
}

func (o *JSONOutput) Success(msg string) { o.emit(event{Type: "success", Message: msg}) }
func (o *JSONOutput) Warning(msg string) { o.emit(event{Type: "warning", Message: msg}) }
func (o *JSONOutput) Info(msg string)    { o.emit(event{Type: "info", Message: msg}) }

// Error emits the user-facing message with its suggested action. The raw
// error text goes to details when it differs.
func (o *JSONOutput) Error(err error) {
	msg, action := errors.Actionable(err)
	ev := event{Type: "error", Message: msg, Action: action}
	if raw := err.Error(); raw != msg {
		ev.Details = raw
	}
	o.emit(ev)
}

// Table emits rows as objects keyed by column header. Short rows are padded
// with empty strings.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	objects := make([]map[string]string, len(rows))
	for r, row := range rows {
		obj := make(map[string]string, len(headers))
		for c, h := range headers {
			var cell string
			if c < len(row) {
				cell = row[c]
			}
			obj[h] = cell
		}
		objects[r] = obj
	}
	o.emit(objects)
}

func (o *JSONOutput) JSON(v any) error {
	return o.enc.Encode(v)
}

// Spinner never animates in JSON mode.
func (o *JSONOutput) Spinner(context.Context, string) Spinner {
	return &NoopSpinner{}
}

func (o *JSONOutput) URL(url, displayText string) {
	ev := event{Type: "url", URL: url}
	if displayText != url {
		ev.Display = displayText
	}
	o.emit(ev)
}
