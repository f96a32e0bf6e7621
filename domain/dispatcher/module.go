package dispatcher

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("dispatcher",
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return d.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return d.Stop(ctx) },
	})
}
