// Package main provides the entry point for the agent orchestration API server.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/cipher982/zerg/domain/agents"
	"github.com/cipher982/zerg/domain/dispatcher"
	"github.com/cipher982/zerg/domain/eventbus"
	"github.com/cipher982/zerg/domain/eventstore"
	"github.com/cipher982/zerg/domain/health"
	"github.com/cipher982/zerg/domain/reaper"
	"github.com/cipher982/zerg/domain/resume"
	"github.com/cipher982/zerg/domain/roundabout"
	"github.com/cipher982/zerg/domain/runs"
	"github.com/cipher982/zerg/domain/stream"
	"github.com/cipher982/zerg/domain/supervisor"
	"github.com/cipher982/zerg/domain/threads"
	"github.com/cipher982/zerg/domain/tracing"
	"github.com/cipher982/zerg/domain/users"
	"github.com/cipher982/zerg/domain/workerqueue"
	"github.com/cipher982/zerg/domain/workerrunner"
	"github.com/cipher982/zerg/internal/config"
	"github.com/cipher982/zerg/internal/database"
	"github.com/cipher982/zerg/internal/migrate"
	"github.com/cipher982/zerg/internal/server"
	"github.com/cipher982/zerg/internal/tenant"
	"github.com/cipher982/zerg/pkg/adk"
	"github.com/cipher982/zerg/pkg/auth"
	"github.com/cipher982/zerg/pkg/llmclient"
	"github.com/cipher982/zerg/pkg/logger"
)

func main() {
	// Load .env files if present (for local development)
	// Order matters: .env.local overrides .env
	// Note: Load() won't overwrite existing vars, Overload() will
	_ = godotenv.Load("../../.env")
	_ = godotenv.Overload("../../.env.local") // Overload ensures local values take precedence

	fx.New(
		// Logging
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		tenant.Module,
		server.Module,
		tracing.Module,

		// Auth module
		auth.Module,

		// LLM client (direct chat-completions style calls)
		llmclient.Module,

		// ADK module (Google Agent Development Kit, model factory for workers)
		adk.Module,

		// Ambient ops surface
		health.Module,

		// Core domain
		users.Module,
		agents.Module,
		threads.Module,
		runs.Module,

		// Event plumbing
		eventstore.Module,
		eventbus.Module,

		// Worker job queue and execution
		workerqueue.Module,
		workerrunner.Module,
		dispatcher.Module,
		roundabout.Module,

		// Supervisor orchestration and resumability
		supervisor.Module,
		resume.Module,
		reaper.Module,

		// Durable SSE streaming
		stream.Module,
	).Run()
}
