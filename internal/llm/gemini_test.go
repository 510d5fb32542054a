package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

func TestToGeminiContents(t *testing.T) {
	contents, system := toGeminiContents([]domain.Message{
		domain.SystemMessage("persona"),
		domain.SystemMessage("protocol"),
		domain.UserMessage("task"),
		domain.AssistantMessage("reply"),
		domain.UserMessage("tool result"),
	})

	assert.Equal(t, "persona\n\nprotocol", system)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "reply", contents[1].Parts[0].Text)
	assert.Equal(t, "user", contents[2].Role)
}

func TestNewGeminiBackend_MissingKey(t *testing.T) {
	t.Setenv("LUNA_TEST_GEMINI_KEY", "")
	_, err := NewGeminiBackend(context.Background(), config.CloudConfig{
		Provider:  config.ProviderGemini,
		Model:     "gemini-2.5-flash",
		APIKeyEnv: "LUNA_TEST_GEMINI_KEY",
	})
	assert.ErrorIs(t, err, errors.ErrMissingCredential)
}
