package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookstandapp/bookstand-web/internal/config"
	"github.com/bookstandapp/bookstand-web/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Bookstand",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"catalog_url", cfg.Catalog.BaseURL,
		"data_path", cfg.App.DataPath,
	)

	return log, nil
}
