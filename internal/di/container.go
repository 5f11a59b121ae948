// Package di provides dependency injection configuration for the Bookstand server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookstandapp/bookstand-web/internal/config"
	"github.com/bookstandapp/bookstand-web/internal/di/providers"
	"github.com/bookstandapp/bookstand-web/internal/logger"
	"github.com/bookstandapp/bookstand-web/internal/session"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSessionKey)
	do.Provide(injector, providers.ProvideSessionManager)

	// Upstream catalog
	do.Provide(injector, providers.ProvideCatalogClient)

	// Event stream
	do.Provide(injector, providers.ProvideSSEManager)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[providers.SessionKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*session.Manager](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CatalogClientHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SSEManagerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
