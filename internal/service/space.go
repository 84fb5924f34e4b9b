package service

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/psstapp/psst-server/internal/auth"
	"github.com/psstapp/psst-server/internal/codec"
	"github.com/psstapp/psst-server/internal/domain"
	domainerrors "github.com/psstapp/psst-server/internal/errors"
	"github.com/psstapp/psst-server/internal/identity"
	"github.com/psstapp/psst-server/internal/store"
)

// SpaceService handles space creation and invite-based membership.
type SpaceService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSpaceService creates a new space service.
func NewSpaceService(store *store.Store, logger *slog.Logger) *SpaceService {
	return &SpaceService{
		store:  store,
		logger: logger.With("service", "space"),
	}
}

// CreateSpaceRequest carries the parameters for founding a space.
type CreateSpaceRequest struct {
	SpaceName string `json:"spaceName" validate:"required,max=64"`
	Name      string `json:"name" validate:"omitempty,max=64"`
}

// JoinRequest carries the parameters for redeeming an invite.
type JoinRequest struct {
	Name   string `json:"name" validate:"omitempty,max=64"`
	Invite []byte `json:"invite" validate:"required"`
}

// InviteVerification is the outcome of a successful invite check.
type InviteVerification struct {
	SpaceName   string `json:"spaceName"`
	Admin       bool   `json:"admin"`
	Fingerprint string `json:"-"`
}

// CreateSpace founds a new space with the caller as its first admin.
// Service keys for the space are derived from fresh random material.
func (s *SpaceService) CreateSpace(ctx context.Context, caller auth.Identity, req CreateSpaceRequest) error {
	if caller == nil {
		return domainerrors.ErrUnauthorized
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	if !domain.ValidSpaceName(req.SpaceName) {
		return domainerrors.Constraint("Invalid space name")
	}

	jitsiKey, err := randomDigest()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "generate jitsi key")
	}
	etherpadKey, err := randomDigest()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "generate etherpad key")
	}

	space := &domain.Space{
		Name:     req.SpaceName,
		JitsiKey: jitsiKey,
		// Etherpad group names may not exceed 32 hex characters and carry
		// a fixed suffix so pads survive cleanup sweeps.
		EtherpadKey: etherpadKey[:32] + "-keep",
	}
	founder := &domain.Member{
		PublicKey: caller.Hex(),
		SpaceName: req.SpaceName,
		Name:      req.Name,
		IsAdmin:   true,
		// The founder has no invite. Their own key fills the ledger slot so
		// uniqueness still holds.
		InviteFingerprint: codec.Digest(caller),
	}

	if err := s.store.CreateSpace(ctx, space, founder); err != nil {
		return err
	}

	s.logger.Info("space created", "space", req.SpaceName, "founder", caller.Hex())
	return nil
}

// VerifyInvite checks a raw invite token without consuming it.
//
// Checks run in a fixed order so callers always learn the most actionable
// failure: a spent token reports as spent even when it is also expired,
// and the signer is vetted before the signature itself.
func (s *SpaceService) VerifyInvite(ctx context.Context, token []byte) (*InviteVerification, error) {
	fingerprint := codec.Digest(token)

	used, err := s.store.InviteStatus(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if used != 0 {
		return nil, domainerrors.ErrInviteAlreadyUsed
	}

	invite, err := domain.ParseInvite(token)
	if err != nil {
		return nil, domainerrors.ErrInvalidSignature.WithCause(err)
	}

	issuer, err := s.store.GetMember(ctx, codec.ToHex(invite.IssuerPublicKey))
	if err != nil {
		return nil, err
	}
	if issuer == nil || !issuer.IsAdmin {
		return nil, domainerrors.ErrInvalidInviteSigner
	}

	if !identity.Verify(invite.Message(), invite.Signature, invite.IssuerPublicKey) {
		return nil, domainerrors.ErrInvalidSignature
	}

	if invite.Expired(time.Now()) {
		return nil, domainerrors.ErrInviteExpired
	}

	return &InviteVerification{
		SpaceName:   issuer.SpaceName,
		Admin:       invite.Admin,
		Fingerprint: fingerprint,
	}, nil
}

// Join redeems an invite and records the caller as a member of the
// issuer's space. The token's fingerprint is burned by the membership
// row's uniqueness, so a raced double-join loses on insert.
func (s *SpaceService) Join(ctx context.Context, caller auth.Identity, req JoinRequest) error {
	if caller == nil {
		return domainerrors.ErrUnauthorized
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	verified, err := s.VerifyInvite(ctx, req.Invite)
	if err != nil {
		return err
	}

	member := &domain.Member{
		PublicKey:         caller.Hex(),
		SpaceName:         verified.SpaceName,
		Name:              req.Name,
		IsAdmin:           verified.Admin,
		InviteFingerprint: verified.Fingerprint,
	}
	if err := s.store.CreateMember(ctx, member); err != nil {
		return err
	}

	s.logger.Info("member joined", "space", verified.SpaceName, "member", caller.Hex(), "admin", verified.Admin)
	return nil
}

// GetSpace returns the caller's membership and space in one view,
// or an authorization error when the caller belongs to no space.
func (s *SpaceService) GetSpace(ctx context.Context, caller auth.Identity) (*domain.MemberSpace, error) {
	if caller == nil {
		return nil, domainerrors.ErrUnauthorized
	}
	ms, err := s.store.GetMemberSpace(ctx, caller.Hex())
	if err != nil {
		return nil, err
	}
	if ms == nil {
		return nil, domainerrors.ErrUnauthorized
	}
	return ms, nil
}

// GetInviteDetails returns the display name and space of an invite's
// issuer, keyed by the issuer's public key. Used by clients to render
// "X invited you to Y" before the invite is redeemed, so it requires no
// membership of its own.
func (s *SpaceService) GetInviteDetails(ctx context.Context, issuerPublicKey []byte) (*domain.InviteDetails, error) {
	details, err := s.store.GetInviteDetails(ctx, codec.ToHex(issuerPublicKey))
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, domainerrors.ErrInvalidInviteSigner
	}
	return details, nil
}

// HasSpace reports whether a space with the given name exists.
// Name matching is case-insensitive like the uniqueness rule.
func (s *SpaceService) HasSpace(ctx context.Context, name string) (bool, error) {
	return s.store.HasSpace(ctx, name)
}

// randomDigest returns the hex digest of 32 fresh random bytes.
func randomDigest() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return codec.Digest(buf), nil
}
