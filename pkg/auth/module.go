package auth

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/cipher982/zerg/internal/config"
)

// Module provides the *Verifier used by every authenticated route group.
var Module = fx.Module("auth",
	fx.Provide(NewVerifierFromConfig),
)

// NewVerifierFromConfig wires a Verifier from application configuration,
// seeding the static test-token map only outside production.
func NewVerifierFromConfig(cfg *config.Config, log *slog.Logger) *Verifier {
	tokens := map[string]*AuthUser{}
	if cfg.Environment != "production" {
		tokens["test-admin-token"] = &AuthUser{ID: "00000000-0000-0000-0000-000000000001", Email: "admin@test.local", Role: "ADMIN"}
		tokens["test-user-token"] = &AuthUser{ID: "00000000-0000-0000-0000-000000000002", Email: "user@test.local", Role: "USER"}
	}
	return NewVerifier(cfg.JWTSecret, log, tokens)
}
