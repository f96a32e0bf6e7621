package health

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("health",
	fx.Provide(
		NewHandler,
		NewMetricsHandler,
		NewCollector,
	),
	fx.Invoke(RegisterRoutes, registerCollectorLifecycle),
)

func registerCollectorLifecycle(lc fx.Lifecycle, c *Collector) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return c.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return c.Stop(ctx) },
	})
}
