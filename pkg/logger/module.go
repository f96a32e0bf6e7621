package logger

import (
	"os"

	"go.uber.org/fx"
)

// Module provides the process-wide *slog.Logger and *HTTPLogger.
var Module = fx.Module("logger",
	fx.Provide(NewLogger),
	fx.Provide(newHTTPLoggerFromEnv),
)

func newHTTPLoggerFromEnv() (*HTTPLogger, error) {
	return NewHTTPLogger(os.Getenv("HTTP_ACCESS_LOG_PATH"))
}
