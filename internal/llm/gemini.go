package llm

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

// GeminiBackend is a thin wrapper around the official genai client.
type GeminiBackend struct {
	cli         *genai.Client
	model       string
	temperature float32
}

var _ Backend = (*GeminiBackend)(nil)

// NewGeminiBackend validates the credential and creates a Gemini API client.
func NewGeminiBackend(ctx context.Context, cfg config.CloudConfig) (*GeminiBackend, error) {
	key := cfg.APIKey()
	if err := CheckCredential(cfg.APIKeyEnv, key); err != nil {
		return nil, err
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	return &GeminiBackend{cli: cli, model: cfg.Model, temperature: float32(cfg.Temperature)}, nil
}

// Name implements Backend.
func (g *GeminiBackend) Name() string { return "gemini:" + g.model }

// Kind implements Backend.
func (g *GeminiBackend) Kind() domain.BackendKind { return domain.BackendCloud }

// Model implements Backend.
func (g *GeminiBackend) Model() string { return g.model }

// Complete implements Backend. System messages become the system instruction;
// assistant turns are sent with the "model" role.
func (g *GeminiBackend) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	contents, system := toGeminiContents(messages)

	temp := g.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", errors.Wrapf(errors.ErrBackendResponse, "%s: %v", g.Name(), err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.Wrap(errors.ErrEmptyCompletion, g.Name())
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.Wrap(errors.ErrEmptyCompletion, g.Name())
	}
	return sb.String(), nil
}

func toGeminiContents(messages []domain.Message) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.MessageSystem:
			system = append(system, m.Content)
		case domain.MessageAssistant:
			contents = append(contents, &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	return contents, strings.Join(system, "\n\n")
}
