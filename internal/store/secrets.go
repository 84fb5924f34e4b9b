package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/psstapp/psst-server/internal/domain"
)

// GetSecret retrieves a member's vault blob. Returns nil when the member
// never stored one.
func (s *Store) GetSecret(ctx context.Context, publicKey string) (*domain.Secret, error) {
	var secret domain.Secret
	err := s.db.QueryRowContext(ctx,
		`SELECT value, nonce FROM secrets WHERE public_key = ?`, publicKey).
		Scan(&secret.Value, &secret.Nonce)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &secret, nil
}

// SetSecret stores a member's vault blob, replacing any previous one.
func (s *Store) SetSecret(ctx context.Context, publicKey string, secret *domain.Secret) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO secrets (public_key, value, nonce)
		VALUES (?, ?, ?)`,
		publicKey, secret.Value, secret.Nonce)
	return err
}
