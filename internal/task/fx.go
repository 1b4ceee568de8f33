package task

import (
	"context"

	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerline/internal/task/domain"
)

// Module provides the async task runner.
var Module = fx.Module("task.runner",
	fx.Provide(NewRunner),
	fx.Provide(func(r *Runner) domain.Runner { return r }),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, r *Runner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			r.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return r.Stop(ctx)
		},
	})
}
