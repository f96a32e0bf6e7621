package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3002"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Database settings
	Database DatabaseConfig

	// LLM configuration (chat completions via the supervisor)
	LLM LLMConfig

	// OpenTelemetry tracing
	Otel OtelConfig

	// JWTSecret signs/verifies bearer tokens (pkg/auth)
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// MultiTenantSchemas switches the Tenant Router between single-schema
	// ("public") mode and one-schema-per-tenant mode.
	MultiTenantSchemas bool `env:"MULTI_TENANT_SCHEMAS" envDefault:"false"`

	// TenantHeader names the HTTP header carrying the tenant id per request.
	TenantHeader string `env:"TENANT_HEADER" envDefault:"X-Test-Worker"`

	// The time.Duration fields below parse Go duration strings (e.g.
	// "120s", "1000ms") whatever unit their variable name carries; a bare
	// number such as "120" is rejected.

	// SupervisorTimeout bounds a single run_supervisor LLM turn.
	SupervisorTimeout time.Duration `env:"DEFAULT_SUPERVISOR_TIMEOUT_SECS" envDefault:"120s"`

	// DispatchTick is the Worker Dispatcher's poll interval.
	DispatchTick time.Duration `env:"WORKER_DISPATCH_TICK_MS" envDefault:"1000ms"`

	// WorkerMaxConcurrency bounds jobs claimed per dispatcher tick.
	WorkerMaxConcurrency int `env:"WORKER_MAX_CONCURRENCY" envDefault:"5"`

	// SSEHeartbeat is the idle interval between heartbeat frames.
	SSEHeartbeat time.Duration `env:"SSE_HEARTBEAT_SECS" envDefault:"30s"`

	// IdempotencyTTL bounds how long an Idempotency-Key is honored.
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL_SECS" envDefault:"600s"`

	// IdempotencyMaxSize bounds the in-memory idempotency cache.
	IdempotencyMaxSize int `env:"IDEMPOTENCY_MAX_SIZE" envDefault:"1000"`

	// WorkerJobTimeout bounds how long a worker job may sit in running
	// before the stale-job reaper reclaims it.
	WorkerJobTimeout time.Duration `env:"WORKER_JOB_TIMEOUT_SECS" envDefault:"600s"`

	// RoundaboutTick is how often the stuck-worker watchdog polls for
	// progress on a job it's monitoring.
	RoundaboutTick time.Duration `env:"ROUNDABOUT_TICK_SECS" envDefault:"15s"`

	// RoundaboutStallPolls is how many consecutive progress-free ticks
	// the watchdog tolerates before warning.
	RoundaboutStallPolls int `env:"ROUNDABOUT_STALL_POLLS" envDefault:"4"`

	// SupervisorRateLimitPerMinute bounds how many dispatch requests a
	// single owner may make per minute before getting a 429.
	SupervisorRateLimitPerMinute float64 `env:"SUPERVISOR_RATE_LIMIT_PER_MINUTE" envDefault:"20"`

	// SupervisorRateLimitBurst is the token bucket burst size layered on
	// top of the per-minute rate.
	SupervisorRateLimitBurst int `env:"SUPERVISOR_RATE_LIMIT_BURST" envDefault:"5"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"28800s"` // 8 hours for SSE
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"28800s"`  // 8 hours for SSE
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"zerg"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"zerg"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// LLMConfig holds LLM (chat completion) configuration for the supervisor's
// thin llmclient boundary.
type LLMConfig struct {
	// GCPProjectID selects Vertex AI as the backing model provider.
	GCPProjectID string `env:"GCP_PROJECT_ID" envDefault:""`

	// VertexAILocation is the Vertex AI region.
	VertexAILocation string `env:"VERTEX_AI_LOCATION" envDefault:"global"`

	// Model is the chat model name.
	Model string `env:"VERTEX_AI_MODEL" envDefault:"gemini-3-flash-preview"`

	MaxOutputTokens int     `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"65536"`
	Temperature     float64 `env:"LLM_TEMPERATURE" envDefault:"0"`

	// Timeout is the per-call LLM request timeout (distinct from the
	// overall supervisor-turn timeout).
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// GoogleAPIKey is a development fallback when Vertex AI isn't configured.
	GoogleAPIKey string `env:"GOOGLE_API_KEY" envDefault:""`

	// NetworkDisabled disables LLM network calls (unit/integration tests).
	NetworkDisabled bool `env:"LLM_NETWORK_DISABLED" envDefault:"false"`
}

// IsEnabled returns true if the LLM client should make real network calls.
func (l *LLMConfig) IsEnabled() bool {
	if l.NetworkDisabled {
		return false
	}
	return l.UseVertexAI() || l.GoogleAPIKey != ""
}

// UseVertexAI returns true if Vertex AI credentials are present.
func (l *LLMConfig) UseVertexAI() bool {
	return l.GCPProjectID != "" && l.VertexAILocation != ""
}

// NewConfig loads configuration from the environment, optionally seeded
// from a local .env file (ignored if absent).
func NewConfig(log *slog.Logger) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("db_host", cfg.Database.Host),
		slog.Bool("multi_tenant_schemas", cfg.MultiTenantSchemas),
	)

	return cfg, nil
}
