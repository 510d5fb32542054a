package cli

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/logging"
)

// ExecutionContext holds what every command needs once the root command
// has parsed flags: the loaded configuration, the logger and the activity
// log the logger mirrors into.
type ExecutionContext struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Activity *logging.ActivityLog
	Output   string
}

type executionContextKey struct{}

// withExecutionContext stores ec in ctx.
func withExecutionContext(ctx context.Context, ec *ExecutionContext) context.Context {
	return context.WithValue(ec.Logger.WithContext(ctx), executionContextKey{}, ec)
}

// executionContextFrom returns the context stored by the root command, or a
// default one built from the built-in configuration.
func executionContextFrom(ctx context.Context) *ExecutionContext {
	if ec, ok := ctx.Value(executionContextKey{}).(*ExecutionContext); ok && ec != nil {
		return ec
	}
	cfg := config.DefaultConfig()
	return &ExecutionContext{
		Config:   cfg,
		Logger:   zerolog.Nop(),
		Activity: logging.NewActivityLog(cfg.Log.ActivityCapacity),
		Output:   OutputText,
	}
}
