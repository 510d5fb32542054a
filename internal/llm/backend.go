// Package llm provides the model backends agents talk to: an OpenAI-compatible
// cloud adapter, a Gemini adapter, and a local Ollama adapter, plus the
// selection logic that binds roles to them.
//
// IMPORTANT: This package may import internal/constants, internal/errors,
// internal/config, internal/domain, internal/logging and internal/metrics.
// It MUST NOT import internal/agent, internal/pipeline or internal/crew.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

// Backend is a chat-completion endpoint. Implementations must be safe for
// concurrent use; a deadline on ctx bounds the call.
type Backend interface {
	// Name identifies the backend in logs, e.g. "openai:gpt-4o-mini".
	Name() string

	// Kind reports whether this is the cloud or the local backend.
	Kind() domain.BackendKind

	// Model is the provider model identifier.
	Model() string

	// Complete sends the conversation and returns the assistant's reply text.
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

// placeholderKeys are values shipped in example .env files.
//
//nolint:gochecknoglobals // Static lookup table
var placeholderKeys = []string{
	"your_openai_api_key_here",
	"your_gemini_api_key_here",
	"your_api_key_here",
	"changeme",
	"sk-...",
}

// CheckCredential rejects empty and placeholder API keys.
func CheckCredential(envName, key string) error {
	k := strings.TrimSpace(key)
	if k == "" {
		return fmt.Errorf("%w: %s is not set", errors.ErrMissingCredential, envName)
	}
	lower := strings.ToLower(k)
	for _, p := range placeholderKeys {
		if lower == p {
			return fmt.Errorf("%w: %s still holds the placeholder value", errors.ErrMissingCredential, envName)
		}
	}
	if strings.HasPrefix(k, "<") && strings.HasSuffix(k, ">") {
		return fmt.Errorf("%w: %s still holds the placeholder value", errors.ErrMissingCredential, envName)
	}
	return nil
}
