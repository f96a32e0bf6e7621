package workerqueue

import (
	"github.com/cipher982/zerg/internal/config"
	"go.uber.org/fx"
)

// Module wires the worker job queue into the fx graph. It exposes no
// HTTP surface; the supervisor and dispatcher consume Service directly.
var Module = fx.Module("workerqueue",
	fx.Provide(
		NewRepository,
		NewRegistryFromConfig,
		NewService,
	),
)

func NewRegistryFromConfig(cfg *config.Config) *Registry {
	return NewRegistry(cfg.WorkerMaxConcurrency)
}
