package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/psstapp/psst-server/internal/domain"
)

// CreateSpace inserts a space and its founding member in one transaction: a
// space must never exist without its founder. Constraint violations come back
// translated (ErrDuplicateEntity for a name collision, ErrConstraint for an
// over-long name).
func (s *Store) CreateSpace(ctx context.Context, space *domain.Space, founder *domain.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO spaces (name, jitsi_key, etherpad_key)
		VALUES (?, ?, ?)`,
		space.Name,
		space.JitsiKey,
		space.EtherpadKey,
	)
	if err != nil {
		return translateConstraint(err)
	}

	if err := insertMember(ctx, tx, founder); err != nil {
		return err
	}

	return tx.Commit()
}

// GetSpace retrieves a space by name. Returns nil when absent.
func (s *Store) GetSpace(ctx context.Context, name string) (*domain.Space, error) {
	var space domain.Space
	err := s.db.QueryRowContext(ctx,
		`SELECT name, jitsi_key, etherpad_key FROM spaces WHERE name = ? COLLATE NOCASE`, name).
		Scan(&space.Name, &space.JitsiKey, &space.EtherpadKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &space, nil
}

// HasSpace reports whether a space with the given name exists.
func (s *Store) HasSpace(ctx context.Context, name string) (bool, error) {
	space, err := s.GetSpace(ctx, name)
	if err != nil {
		return false, err
	}
	return space != nil, nil
}
