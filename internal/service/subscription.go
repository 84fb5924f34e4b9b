package service

import (
	"context"
	"log/slog"

	"github.com/psstapp/psst-server/internal/auth"
	"github.com/psstapp/psst-server/internal/domain"
	domainerrors "github.com/psstapp/psst-server/internal/errors"
	"github.com/psstapp/psst-server/internal/push"
	"github.com/psstapp/psst-server/internal/store"
)

// Pusher sends one message to one subscription.
type Pusher interface {
	PublicKey() string
	Send(ctx context.Context, sub domain.Subscription, message string) error
}

// SubscriptionService manages Web Push subscriptions for members and
// fans notifications out across a space. It implements Notifier.
type SubscriptionService struct {
	store  *store.Store
	pusher Pusher
	logger *slog.Logger
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(store *store.Store, pusher Pusher, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		store:  store,
		pusher: pusher,
		logger: logger.With("service", "subscription"),
	}
}

// AddSubscriptionRequest carries a browser push subscription.
type AddSubscriptionRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}

// VapidPublicKey returns the server's VAPID public key, or empty when
// push is not configured.
func (s *SubscriptionService) VapidPublicKey() string {
	if s.pusher == nil {
		return ""
	}
	return s.pusher.PublicKey()
}

// Add registers the caller's push subscription. Only members may
// subscribe; re-registering the same endpoint is a duplicate.
func (s *SubscriptionService) Add(ctx context.Context, caller auth.Identity, req AddSubscriptionRequest) error {
	if caller == nil {
		return domainerrors.ErrUnauthorized
	}
	m, err := s.store.GetMember(ctx, caller.Hex())
	if err != nil {
		return err
	}
	if m == nil {
		return domainerrors.ErrUnauthorized
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	sub := domain.Subscription{Endpoint: req.Endpoint}
	sub.Keys.P256dh = req.Keys.P256dh
	sub.Keys.Auth = req.Keys.Auth
	return s.store.AddSubscription(ctx, m.PublicKey, sub)
}

// NotifySpace pushes a message to every subscription in a space except
// those of exceptPublicKey. Subscriptions the push service reports as
// gone are pruned. Failures are logged and never surface to the caller.
func (s *SubscriptionService) NotifySpace(ctx context.Context, spaceName, exceptPublicKey, message string) {
	if s.pusher == nil {
		return
	}

	subs, err := s.store.ListSubscriptionsBySpace(ctx, spaceName)
	if err != nil {
		s.logger.Error("list subscriptions failed", "space", spaceName, "error", err)
		return
	}

	for _, ms := range subs {
		if ms.PublicKey == exceptPublicKey {
			continue
		}
		if err := s.pusher.Send(ctx, ms.Subscription, message); err != nil {
			if domainerrors.Is(err, push.ErrSubscriptionGone) {
				if err := s.store.DeleteSubscription(ctx, ms.Subscription.Endpoint); err != nil {
					s.logger.Error("prune subscription failed", "error", err)
				}
				continue
			}
			s.logger.Warn("push delivery failed", "space", spaceName, "error", err)
		}
	}
}
