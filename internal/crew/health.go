package crew

import (
	"context"
	"strings"

	"github.com/lunacore/luna/internal/clock"
	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
)

// maxReplyExcerpt bounds the reply kept in a health report.
const maxReplyExcerpt = 200

// TestAgents sends a fixed prompt to each agent's default backend, one agent
// at a time. The report is "ok" only when every agent answered.
func (o *Orchestrator) TestAgents(ctx context.Context) domain.HealthReport {
	report := domain.HealthReport{
		Status:      domain.HealthOK,
		AgentsCount: len(o.defs),
		Backend:     o.backends.Info(),
		AgentTests:  make(map[domain.Role]domain.AgentCheck, len(o.defs)),
	}

	for _, def := range o.defs {
		backend := o.backends.For(def.DefaultBackend)
		check := domain.AgentCheck{Backend: backend.Kind(), Model: backend.Model()}

		start := o.clock.Now()
		reply, err := backend.Complete(ctx, []domain.Message{
			domain.SystemMessage("You are the " + def.Title + "."),
			domain.UserMessage(constants.HealthPrompt),
		})
		if err == nil && strings.TrimSpace(reply) == "" {
			err = errors.ErrEmptyCompletion
		}
		check.Duration = domain.Seconds(clock.Since(o.clock, start))

		if err != nil {
			check.Status = domain.AgentCheckFailed
			check.Error = err.Error()
			report.Status = domain.HealthPartial
			o.logger.Warn().Err(err).Str("role", def.Role.String()).Str("backend", backend.Name()).Msg("agent check failed")
		} else {
			check.Status = domain.AgentCheckSuccess
			check.Reply = excerpt(strings.TrimSpace(reply), maxReplyExcerpt)
		}
		report.AgentTests[def.Role] = check
	}

	if report.OK() {
		logging.Success(o.logger.Info()).Int("agents", report.AgentsCount).Msg("All agents answered")
	}
	return report
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
