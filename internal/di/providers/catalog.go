package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookstandapp/bookstand-web/internal/catalog"
	"github.com/bookstandapp/bookstand-web/internal/config"
	"github.com/bookstandapp/bookstand-web/internal/logger"
)

// CatalogClientHandle wraps the catalog client with shutdown capability.
type CatalogClientHandle struct {
	*catalog.Client
}

// Shutdown implements do.Shutdownable.
func (h *CatalogClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideCatalogClient provides the rate-limited catalog API client.
func ProvideCatalogClient(i do.Injector) (*CatalogClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := catalog.New(catalog.Options{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
		RPS:     cfg.Catalog.RPS,
		Burst:   cfg.Catalog.Burst,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Catalog client ready",
		"base_url", cfg.Catalog.BaseURL,
		"timeout", cfg.Catalog.Timeout,
	)

	return &CatalogClientHandle{Client: client}, nil
}
