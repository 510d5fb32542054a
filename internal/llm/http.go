package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
)

const (
	// maxErrorBody caps how many characters of an error response are quoted
	// back. Keys echoed by the provider are redacted first.
	maxErrorBody = 512
	// maxResponseBody bounds any provider response read into memory.
	maxResponseBody = 8 << 20
)

// doJSON sends body as JSON and decodes a 2xx response into out.
// Connection failures wrap ErrBackendUnavailable; non-2xx answers wrap
// ErrBackendResponse.
func doJSON(ctx context.Context, client *http.Client, method, url, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", errors.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxResponseBody {
		return fmt.Errorf("%w: %s: response larger than %d bytes", errors.ErrBackendResponse, resp.Status, maxResponseBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := logging.FilterSensitiveValue(strings.TrimSpace(string(data)))
		return fmt.Errorf("%w: %s: %s", errors.ErrBackendResponse, resp.Status, truncateRunes(msg, maxErrorBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode: %w", errors.ErrBackendResponse, err)
	}
	return nil
}

// truncateRunes shortens s to at most n runes, marking the cut with "...".
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
