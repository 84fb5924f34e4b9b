// Package di provides dependency injection configuration for the psst daemon.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/psstapp/psst-server/internal/config"
	"github.com/psstapp/psst-server/internal/di/providers"
	"github.com/psstapp/psst-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvidePusher)
	do.Provide(injector, providers.ProvideSpaceService)
	do.Provide(injector, providers.ProvideSubscriptionService)
	do.Provide(injector, providers.ProvideForumService)
	do.Provide(injector, providers.ProvideSecretService)

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
	if _, err := do.Invoke[*slog.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[service.Pusher](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SpaceService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SubscriptionService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ForumService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SecretService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
