package tui

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lunacore/luna/internal/domain"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTerminalSpinner(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	CheckNoColor()
	var out lockedBuffer
	s := NewTerminalSpinner(&out)

	s.Start(context.Background(), "Planning")
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Planning")
	}, time.Second, 10*time.Millisecond)

	s.UpdateMessage("Implementing")
	assert.Equal(t, "Implementing", s.Message())

	s.Stop()
	s.Stop()
	assert.True(t, strings.HasSuffix(out.String(), "\r\033[K"), "line cleared")
}

func TestTerminalSpinner_ContextCancel(t *testing.T) {
	var out lockedBuffer
	s := NewTerminalSpinner(&out)
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx, "working")
	cancel()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.stopped
	}, time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestNoopSpinner(t *testing.T) {
	var buf bytes.Buffer
	sp := NewJSONOutput(&buf).Spinner(context.Background(), "x")
	sp.Update("y")
	sp.Stop()
	assert.Empty(t, buf.String())
}

func TestStageProgress(t *testing.T) {
	assert.Equal(t, 1, StageIndex(domain.StagePlanning))
	assert.Equal(t, 2, StageIndex(domain.StageImplementing))
	assert.Equal(t, 3, StageIndex(domain.StageTesting))
	assert.Equal(t, 3, StageIndex(domain.StageDone))
	assert.Equal(t, 0, StageIndex(domain.Stage("unknown")))

	t.Setenv("NO_COLOR", "1")
	line := StageLine(NewProgressBar(12), domain.StageImplementing)
	assert.True(t, strings.HasSuffix(line, "2/3 Implementing"), line)
}

func TestRenderMarkdown_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	md := "# Deploy\n\n```bash\npython main.py --help\n```\n"
	assert.Equal(t, md, RenderMarkdown(md))
}

func TestTemplateOptions(t *testing.T) {
	opts := TemplateOptions()
	assert.Len(t, opts, len(domain.Templates()))
	for _, o := range opts {
		assert.NotEmpty(t, o.Label)
		_, err := domain.ParseTemplate(o.Value)
		assert.NoError(t, err)
	}
}

func TestSelect_NoOptions(t *testing.T) {
	_, err := Select("pick", nil)
	assert.Error(t, err)
}
