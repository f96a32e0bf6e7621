package jobs

import "go.uber.org/fx"

// Module provides the generic polling worker. Domain modules build
// their own Worker instance with a custom process function and
// register it with fx lifecycle for start/stop.
var Module = fx.Module("jobs",
	// No direct providers - this is a library module.
)
