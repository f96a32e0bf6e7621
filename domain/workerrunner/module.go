package workerrunner

import "go.uber.org/fx"

var Module = fx.Module("workerrunner",
	fx.Provide(New),
)
