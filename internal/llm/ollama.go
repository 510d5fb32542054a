package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

// OllamaBackend talks to a local Ollama server.
type OllamaBackend struct {
	http        *http.Client
	baseURL     string
	model       string
	temperature float64
}

var _ Backend = (*OllamaBackend)(nil)

// NewOllamaBackend builds the adapter. No network call is made.
func NewOllamaBackend(cfg config.LocalConfig) *OllamaBackend {
	return &OllamaBackend{
		http:        &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Name implements Backend.
func (o *OllamaBackend) Name() string { return "ollama:" + o.model }

// Kind implements Backend.
func (o *OllamaBackend) Kind() domain.BackendKind { return domain.BackendLocal }

// Model implements Backend.
func (o *OllamaBackend) Model() string { return o.model }

type ollamaChatRequest struct {
	Model    string           `json:"model"`
	Messages []domain.Message `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  map[string]any   `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error,omitempty"`
}

// Complete implements Backend.
func (o *OllamaBackend) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	req := ollamaChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   false,
		Options:  map[string]any{"temperature": o.temperature},
	}
	var out ollamaChatResponse
	if err := doJSON(ctx, o.http, http.MethodPost, o.baseURL+"/api/chat", "", req, &out); err != nil {
		return "", errors.Wrap(err, o.Name())
	}
	if out.Error != "" {
		return "", errors.Wrapf(errors.ErrBackendResponse, "%s: %s", o.Name(), out.Error)
	}
	if strings.TrimSpace(out.Message.Content) == "" {
		return "", errors.Wrap(errors.ErrEmptyCompletion, o.Name())
	}
	return out.Message.Content, nil
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Probe reports whether the server answers and lists the configured model.
// A model tag without an explicit version matches its ":latest" variant.
func (o *OllamaBackend) Probe(ctx context.Context) error {
	var tags ollamaTags
	if err := doJSON(ctx, o.http, http.MethodGet, o.baseURL+"/api/tags", "", nil, &tags); err != nil {
		return errors.Wrap(err, o.Name())
	}
	for _, m := range tags.Models {
		if m.Name == o.model || m.Name == o.model+":latest" {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrBackendUnavailable, "%s: model not pulled", o.Name())
}
