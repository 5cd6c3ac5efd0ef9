// Package providers contains dependency injection providers for the storefront data layer.
package providers

import (
	"io"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/pageturn/storefront/internal/config"
	"github.com/pageturn/storefront/internal/logger"
)

// LogOutput is where the logger writes. Nil means stdout.
type LogOutput struct {
	io.Writer
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      do.MustInvoke[LogOutput](i).Writer,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting storefront",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"storage_backend", cfg.Storage.Backend,
		"storage_path", cfg.Storage.Path,
		"namespace", cfg.Storage.Namespace,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
