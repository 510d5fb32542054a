package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

// OpenAIBackend talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIBackend struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

var _ Backend = (*OpenAIBackend)(nil)

// NewOpenAIBackend validates the credential and builds the adapter.
func NewOpenAIBackend(cfg config.CloudConfig) (*OpenAIBackend, error) {
	key := cfg.APIKey()
	if err := CheckCredential(cfg.APIKeyEnv, key); err != nil {
		return nil, err
	}
	return &OpenAIBackend{
		http:        &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      key,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string { return "openai:" + b.model }

// Kind implements Backend.
func (b *OpenAIBackend) Kind() domain.BackendKind { return domain.BackendCloud }

// Model implements Backend.
func (b *OpenAIBackend) Model() string { return b.model }

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Backend.
func (b *OpenAIBackend) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	var out chatResponse
	req := chatRequest{Model: b.model, Messages: messages, Temperature: b.temperature}
	if err := doJSON(ctx, b.http, http.MethodPost, b.baseURL+"/chat/completions", b.apiKey, req, &out); err != nil {
		return "", errors.Wrap(err, b.Name())
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errors.Wrap(errors.ErrEmptyCompletion, b.Name())
	}
	return out.Choices[0].Message.Content, nil
}
