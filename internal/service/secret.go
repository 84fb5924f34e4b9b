package service

import (
	"context"
	"log/slog"

	"github.com/psstapp/psst-server/internal/auth"
	"github.com/psstapp/psst-server/internal/domain"
	domainerrors "github.com/psstapp/psst-server/internal/errors"
	"github.com/psstapp/psst-server/internal/store"
)

// SecretService stores one opaque encrypted blob per identity. The
// server never sees plaintext; value and nonce are whatever the client
// produced, and they round-trip byte for byte.
type SecretService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSecretService creates a new secret service.
func NewSecretService(store *store.Store, logger *slog.Logger) *SecretService {
	return &SecretService{
		store:  store,
		logger: logger.With("service", "secret"),
	}
}

// SetSecretRequest carries a client-encrypted blob and its nonce.
type SetSecretRequest struct {
	Value []byte `json:"value" validate:"required"`
	Nonce []byte `json:"nonce" validate:"required"`
}

// Get returns the caller's stored secret, or nil when none is set.
func (s *SecretService) Get(ctx context.Context, caller auth.Identity) (*domain.Secret, error) {
	if caller == nil {
		return nil, domainerrors.ErrUnauthorized
	}
	return s.store.GetSecret(ctx, caller.Hex())
}

// Set stores or replaces the caller's secret.
func (s *SecretService) Set(ctx context.Context, caller auth.Identity, req SetSecretRequest) error {
	if caller == nil {
		return domainerrors.ErrUnauthorized
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	return s.store.SetSecret(ctx, caller.Hex(), &domain.Secret{
		Value: req.Value,
		Nonce: req.Nonce,
	})
}
