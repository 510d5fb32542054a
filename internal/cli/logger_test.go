package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/logging"
)

func TestInitLoggerWithWriter_TeesCategorizedEvents(t *testing.T) {
	var buf bytes.Buffer
	activity := logging.NewActivityLog(10)
	logger := InitLoggerWithWriter(false, false, &buf, activity)

	logger.Info().Msg("plain event")
	pipelineLogger := logging.WithCategory(logger, logging.CategoryPipeline)
	pipelineLogger.Warn().Msg("stage contract not met")
	logger.Debug().Str(logging.FieldCategory, logging.CategoryTool).Msg("filtered by level")

	assert.Contains(t, buf.String(), "plain event")
	assert.Contains(t, buf.String(), "stage contract not met")
	assert.NotContains(t, buf.String(), "filtered by level")

	entries := activity.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, logging.LevelWarning, entries[0].Level)
	assert.Equal(t, logging.CategoryPipeline, entries[0].Category)
	assert.Equal(t, "stage contract not met", entries[0].Message)
}

func TestInitLoggerWithWriter_NilActivity(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(true, false, &buf, nil)
	logger.Debug().Msg("debug visible")
	assert.Contains(t, buf.String(), "debug visible")
}

func TestInitLoggerWithWriter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, true, &buf, nil)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
