// Package push delivers Web Push notifications to browser subscriptions
// using VAPID keys.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/psstapp/psst-server/internal/domain"
)

// ErrSubscriptionGone indicates the push service has permanently dropped
// the subscription and it should be deleted.
var ErrSubscriptionGone = errors.New("push subscription gone")

// defaultTTL is how long the push service may hold an undelivered
// notification, in seconds.
const defaultTTL = 300

// Config holds the VAPID material for signing push requests.
type Config struct {
	// Subscriber is a contact URI handed to the push service, usually a
	// mailto: address.
	Subscriber string
	PublicKey  string
	PrivateKey string
}

// Enabled reports whether the config carries a usable key pair.
func (c Config) Enabled() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

// WebPusher sends notifications through the standard Web Push protocol.
type WebPusher struct {
	cfg    Config
	logger *slog.Logger
}

// NewWebPusher creates a pusher from VAPID config.
func NewWebPusher(cfg Config, logger *slog.Logger) *WebPusher {
	return &WebPusher{
		cfg:    cfg,
		logger: logger.With("component", "push"),
	}
}

// PublicKey returns the VAPID public key clients subscribe with.
func (p *WebPusher) PublicKey() string {
	return p.cfg.PublicKey
}

// Send delivers one message to one subscription. A permanent rejection
// from the push service is reported as ErrSubscriptionGone.
func (p *WebPusher) Send(ctx context.Context, sub domain.Subscription, message string) error {
	resp, err := webpush.SendNotificationWithContext(ctx, []byte(message), &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      p.cfg.Subscriber,
		VAPIDPublicKey:  p.cfg.PublicKey,
		VAPIDPrivateKey: p.cfg.PrivateKey,
		TTL:             defaultTTL,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone, resp.StatusCode == http.StatusNotFound:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %s", resp.Status)
	}
	return nil
}
