package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/psstapp/psst-server/internal/config"
	"github.com/psstapp/psst-server/internal/push"
	"github.com/psstapp/psst-server/internal/service"
)

// ProvidePusher provides the Web Push sender, or nil when no VAPID keys
// are configured.
func ProvidePusher(i do.Injector) (service.Pusher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if !cfg.PushEnabled() {
		log.Info("push notifications disabled, no VAPID keys configured")
		return nil, nil
	}

	return push.NewWebPusher(push.Config{
		Subscriber: cfg.Push.Subscriber,
		PublicKey:  cfg.Push.VapidPublicKey,
		PrivateKey: cfg.Push.VapidPrivateKey,
	}, log), nil
}

// ProvideSpaceService provides the space and invite service.
func ProvideSpaceService(i do.Injector) (*service.SpaceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)
	return service.NewSpaceService(storeHandle.Store, log), nil
}

// ProvideSubscriptionService provides the push subscription service.
func ProvideSubscriptionService(i do.Injector) (*service.SubscriptionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	pusher := do.MustInvoke[service.Pusher](i)
	log := do.MustInvoke[*slog.Logger](i)
	return service.NewSubscriptionService(storeHandle.Store, pusher, log), nil
}

// ProvideForumService provides the forum service, with the subscription
// service as its notifier.
func ProvideForumService(i do.Injector) (*service.ForumService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	subs := do.MustInvoke[*service.SubscriptionService](i)
	log := do.MustInvoke[*slog.Logger](i)
	return service.NewForumService(storeHandle.Store, subs, log), nil
}

// ProvideSecretService provides the secret vault service.
func ProvideSecretService(i do.Injector) (*service.SecretService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)
	return service.NewSecretService(storeHandle.Store, log), nil
}
