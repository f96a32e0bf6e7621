package llmclient

import "go.uber.org/fx"

var Module = fx.Module("llmclient",
	fx.Provide(New),
)
