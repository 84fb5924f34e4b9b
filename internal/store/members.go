package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/psstapp/psst-server/internal/domain"
)

// execer abstracts *sql.DB and *sql.Tx for inserts that run both standalone
// and inside the space-creation transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertMember inserts a membership row, translating constraint violations:
// a reused invite fingerprint is ErrInviteAlreadyUsed, a public key or
// display name collision is ErrDuplicateEntity, an over-long name is
// ErrConstraint.
func insertMember(ctx context.Context, e execer, m *domain.Member) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO members (public_key, space_name, name, is_admin, invite)
		VALUES (?, ?, ?, ?, ?)`,
		m.PublicKey,
		m.SpaceName,
		nullString(m.Name),
		boolToInt(m.IsAdmin),
		m.InviteFingerprint,
	)
	return translateConstraint(err)
}

// CreateMember inserts a membership record. The insert and its uniqueness
// checks are a single statement, so two concurrent redeemers of one invite
// cannot both succeed.
func (s *Store) CreateMember(ctx context.Context, m *domain.Member) error {
	return insertMember(ctx, s.db, m)
}

// scanMember scans a member row, defaulting the display name to the hex
// public key when none was ever set.
func scanMember(scanner interface{ Scan(dest ...any) error }) (*domain.Member, error) {
	var (
		m       domain.Member
		name    sql.NullString
		isAdmin int
	)
	err := scanner.Scan(&m.PublicKey, &m.SpaceName, &name, &isAdmin, &m.InviteFingerprint)
	if err != nil {
		return nil, err
	}
	m.IsAdmin = isAdmin != 0
	if name.Valid && name.String != "" {
		m.Name = name.String
	} else {
		m.Name = m.PublicKey
	}
	return &m, nil
}

// GetMember retrieves a membership by hex public key. Returns nil when the
// key belongs to no space.
func (s *Store) GetMember(ctx context.Context, publicKey string) (*domain.Member, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT public_key, space_name, name, is_admin, invite
		FROM members
		WHERE public_key = ?`,
		publicKey)

	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMemberSpace retrieves the member/space join view for the given hex
// public key. Returns nil when the key belongs to no space.
func (s *Store) GetMemberSpace(ctx context.Context, publicKey string) (*domain.MemberSpace, error) {
	var (
		ms      domain.MemberSpace
		name    sql.NullString
		isAdmin int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT members.name, members.is_admin, spaces.name, spaces.jitsi_key, spaces.etherpad_key
		FROM members
		INNER JOIN spaces ON members.space_name = spaces.name
		WHERE members.public_key = ?`,
		publicKey).
		Scan(&name, &isAdmin, &ms.SpaceName, &ms.JitsiKey, &ms.EtherpadKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ms.IsAdmin = isAdmin != 0
	if name.Valid && name.String != "" {
		ms.Name = name.String
	} else {
		ms.Name = publicKey
	}
	return &ms, nil
}

// GetInviteDetails returns the display name and space of a member, used to
// describe an invite's issuer. Returns nil when the key belongs to no space.
func (s *Store) GetInviteDetails(ctx context.Context, publicKey string) (*domain.InviteDetails, error) {
	var (
		details domain.InviteDetails
		name    sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT members.name, spaces.name
		FROM members
		INNER JOIN spaces ON members.space_name = spaces.name
		WHERE members.public_key = ?`,
		publicKey).
		Scan(&name, &details.SpaceName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if name.Valid && name.String != "" {
		details.UserName = name.String
	} else {
		details.UserName = publicKey
	}
	return &details, nil
}

// InviteStatus reports how many membership rows have consumed the given
// invite fingerprint: 0 or 1. Pure read, no signature verification.
func (s *Store) InviteStatus(ctx context.Context, fingerprint string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE invite = ?`, fingerprint).
		Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IsAdmin reports whether the hex public key is an admin of the given space.
// False when the key has no membership or belongs to a different space.
func (s *Store) IsAdmin(ctx context.Context, publicKey, spaceName string) (bool, error) {
	m, err := s.GetMember(ctx, publicKey)
	if err != nil {
		return false, err
	}
	return m != nil && m.IsAdmin && m.SpaceName == spaceName, nil
}
