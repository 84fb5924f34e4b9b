// Package providers contains dependency injection providers for the psst daemon.
package providers

import (
	"log/slog"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/psstapp/psst-server/internal/config"
	"github.com/psstapp/psst-server/internal/logger"
)

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("starting psst daemon",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"database_path", cfg.Database.Path,
		"push_enabled", cfg.PushEnabled(),
	)

	return log, nil
}
