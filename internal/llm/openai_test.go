package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

func testCloudConfig(t *testing.T, baseURL string) config.CloudConfig {
	t.Helper()
	t.Setenv("LUNA_TEST_OPENAI_KEY", "sk-"+"TESTONLYxxxxxxxxxxxxxxxx")
	return config.CloudConfig{
		Provider:    config.ProviderOpenAI,
		Model:       "gpt-4o-mini",
		APIKeyEnv:   "LUNA_TEST_OPENAI_KEY",
		BaseURL:     baseURL,
		Temperature: 0.2,
		Timeout:     5 * time.Second,
	}
}

func TestOpenAIBackend_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-TESTONLYxxxxxxxxxxxxxxxx", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(testCloudConfig(t, srv.URL+"/v1/"))
	require.NoError(t, err)

	reply, err := b.Complete(context.Background(), []domain.Message{
		domain.SystemMessage("be brief"),
		domain.UserMessage("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, domain.MessageSystem, got.Messages[0].Role)

	assert.Equal(t, "openai:gpt-4o-mini", b.Name())
	assert.Equal(t, domain.BackendCloud, b.Kind())
}

func TestOpenAIBackend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(testCloudConfig(t, srv.URL))
	require.NoError(t, err)

	_, err = b.Complete(context.Background(), []domain.Message{domain.UserMessage("hi")})
	require.ErrorIs(t, err, errors.ErrBackendResponse)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenAIBackend_ErrorBodyTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, strings.Repeat("é", 2*maxErrorBody), http.StatusBadGateway)
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(testCloudConfig(t, srv.URL))
	require.NoError(t, err)

	_, err = b.Complete(context.Background(), []domain.Message{domain.UserMessage("hi")})
	require.ErrorIs(t, err, errors.ErrBackendResponse)
	assert.True(t, utf8.ValidString(err.Error()))
	assert.True(t, strings.HasSuffix(err.Error(), strings.Repeat("é", 3)+"..."))
}

func TestOpenAIBackend_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"`))
		_, _ = w.Write(bytes.Repeat([]byte("a"), maxResponseBody))
		_, _ = w.Write([]byte(`"}}]}`))
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(testCloudConfig(t, srv.URL))
	require.NoError(t, err)

	_, err = b.Complete(context.Background(), []domain.Message{domain.UserMessage("hi")})
	require.ErrorIs(t, err, errors.ErrBackendResponse)
	assert.Contains(t, err.Error(), "response larger than")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 3))
	assert.Equal(t, "ab...", truncateRunes("abc", 2))
	assert.Equal(t, "éé...", truncateRunes("ééé", 2))
	assert.Empty(t, truncateRunes("", 4))
}

func TestOpenAIBackend_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(testCloudConfig(t, srv.URL))
	require.NoError(t, err)

	_, err = b.Complete(context.Background(), []domain.Message{domain.UserMessage("hi")})
	assert.ErrorIs(t, err, errors.ErrEmptyCompletion)
}

func TestOpenAIBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	b, err := NewOpenAIBackend(testCloudConfig(t, url))
	require.NoError(t, err)

	_, err = b.Complete(context.Background(), []domain.Message{domain.UserMessage("hi")})
	assert.ErrorIs(t, err, errors.ErrBackendUnavailable)
}

func TestNewOpenAIBackend_MissingKey(t *testing.T) {
	cfg := testCloudConfig(t, "https://api.openai.com/v1")
	t.Setenv(cfg.APIKeyEnv, "your_openai_api_key_here")

	_, err := NewOpenAIBackend(cfg)
	assert.ErrorIs(t, err, errors.ErrMissingCredential)
}
