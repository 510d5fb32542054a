package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/metrics"
)

// Instrumented wraps a backend with per-role metrics and debug logging.
type Instrumented struct {
	Backend
	role     domain.Role
	recorder metrics.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewInstrumented wraps b so every call is recorded under role.
func NewInstrumented(b Backend, role domain.Role, recorder metrics.Recorder, logger zerolog.Logger) *Instrumented {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Instrumented{Backend: b, role: role, recorder: recorder, logger: logger, now: time.Now}
}

// Complete implements Backend.
func (i *Instrumented) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	start := i.now()
	reply, err := i.Backend.Complete(ctx, messages)
	elapsed := i.now().Sub(start)

	i.recorder.LLMCall(string(i.role), string(i.Kind()), elapsed, err)
	i.logger.Debug().
		Str("role", string(i.role)).
		Str("backend", i.Name()).
		Int("messages", len(messages)).
		Int("reply_bytes", len(reply)).
		Dur("duration", elapsed).
		Err(err).
		Msg("model call")
	return reply, err
}

var _ Backend = (*Instrumented)(nil)
