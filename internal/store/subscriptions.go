package store

import (
	"context"
	"encoding/json/v2"

	"github.com/psstapp/psst-server/internal/codec"
	"github.com/psstapp/psst-server/internal/domain"
)

// MemberSubscription pairs a push subscription with the hex public key of the
// member who registered it.
type MemberSubscription struct {
	PublicKey    string
	Subscription domain.Subscription
}

// AddSubscription registers a push subscription for a member. The row id is
// the digest of the endpoint, so re-registering the same endpoint is a
// duplicate and comes back as ErrDuplicateEntity; a key without a membership
// fails the foreign key and is rejected.
func (s *Store) AddSubscription(ctx context.Context, publicKey string, sub domain.Subscription) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, public_key, subscription)
		VALUES (?, ?, ?)`,
		codec.DigestString(sub.Endpoint),
		publicKey,
		string(payload),
	)
	return translateConstraint(err)
}

// DeleteSubscription removes a subscription by its endpoint. Idempotent; used
// to prune targets the push service reports as permanently gone.
func (s *Store) DeleteSubscription(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE id = ?`, codec.DigestString(endpoint))
	return err
}

// ListSubscriptionsBySpace returns every subscription registered by members
// of the given space.
func (s *Store) ListSubscriptionsBySpace(ctx context.Context, spaceName string) ([]MemberSubscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subscriptions.public_key, subscriptions.subscription
		FROM subscriptions
		INNER JOIN members ON subscriptions.public_key = members.public_key
		WHERE members.space_name = ?`,
		spaceName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []MemberSubscription
	for rows.Next() {
		var (
			ms      MemberSubscription
			payload string
		)
		if err := rows.Scan(&ms.PublicKey, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &ms.Subscription); err != nil {
			return nil, err
		}
		subs = append(subs, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}
