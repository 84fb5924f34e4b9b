package store

import (
	"strings"

	domainerrors "github.com/psstapp/psst-server/internal/errors"
)

// translateConstraint classifies a raw SQLite constraint violation into the
// typed taxonomy. The driver exposes violations only through the error text,
// so this is the single place that string-matches on it; every known message
// is covered by tests. Anything unrecognized propagates untouched as an
// opaque internal error.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: members.invite"):
		// Second redemption of the same token. The uniqueness constraint is
		// the atomic arbiter between concurrent redeemers.
		return domainerrors.ErrInviteAlreadyUsed.WithCause(err)
	case strings.Contains(msg, "UNIQUE constraint failed: members.public_key"),
		strings.Contains(msg, "UNIQUE constraint failed: members.name, members.space_name"),
		strings.Contains(msg, "UNIQUE constraint failed: spaces.name"),
		strings.Contains(msg, "UNIQUE constraint failed: subscriptions.id"):
		return domainerrors.ErrDuplicateEntity.WithCause(err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return domainerrors.ErrConstraint.WithCause(err)
	default:
		return err
	}
}

// isForeignKeyViolation reports whether err is a foreign key constraint
// failure. SQLite does not say which key; callers decide what that means for
// their operation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
