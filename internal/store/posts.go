package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/psstapp/psst-server/internal/domain"
	domainerrors "github.com/psstapp/psst-server/internal/errors"
)

// CreatePost inserts a post. When post.Ts is zero the row gets the current
// Unix time from the database.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	var ts sql.NullInt64
	if post.Ts != 0 {
		ts = sql.NullInt64{Int64: post.Ts, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, public_key, space_name, parent_id, title, body, ts)
		VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, strftime('%s', 'now')))`,
		post.ID,
		post.PublicKey,
		post.SpaceName,
		post.ParentID,
		post.Title,
		post.Body,
		ts,
	)
	return translateConstraint(err)
}

// UpdatePost sets title and body on a post, scoped to its author. The row
// predicate is the write-eligibility check: a non-author (or a missing post)
// affects zero rows, and the caller treats that uniformly as unauthorized.
func (s *Store) UpdatePost(ctx context.Context, id, publicKey, title, body string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, body = ?
		WHERE id = ? AND public_key = ?`,
		title, body, id, publicKey)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeletePost deletes a post, scoped to its author. Replies and seen markers
// cascade. Returns the number of rows affected (0 or 1).
func (s *Store) DeletePost(ctx context.Context, id, publicKey string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ? AND public_key = ?`, id, publicKey)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetPost retrieves a post by id as seen by the given member, scoped to their
// space. Returns nil when the post does not exist there.
func (s *Store) GetPost(ctx context.Context, publicKey, spaceName, id string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
		    posts.id, posts.parent_id, posts.title, posts.body, posts.ts,
		    members.name, members.public_key, seen.ts
		FROM posts
		INNER JOIN members
		    ON posts.space_name = members.space_name
		    AND posts.public_key = members.public_key
		LEFT OUTER JOIN seen
		    ON posts.id = seen.post_id AND seen.public_key = ?
		WHERE posts.id = ? AND posts.space_name = ?`,
		publicKey, id, spaceName)

	var (
		post   domain.Post
		name   sql.NullString
		seenTs sql.NullInt64
	)
	err := row.Scan(&post.ID, &post.ParentID, &post.Title, &post.Body, &post.Ts,
		&name, &post.PublicKey, &seenTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	applyPostName(&post, name)
	if seenTs.Valid {
		post.SeenTs = &seenTs.Int64
	}
	return &post, nil
}

// ListPosts returns the posts under parentID ("" for top-level threads) in
// the given space, ordered by the newest activity in each reply subtree,
// newest first. The seen flag compares the caller's seen marker against
// activity by others only, so a thread where the caller wrote the last reply
// still counts as seen; sort order counts every reply.
func (s *Store) ListPosts(ctx context.Context, publicKey, spaceName, parentID string, limit, offset int) ([]*domain.ThreadPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
		    posts.id, posts.parent_id, posts.title, posts.body, posts.ts,
		    members.name, members.public_key, seen.ts,
		    MAX(IFNULL(replies.ts, posts.ts)) AS last_ts,
		    seen.ts >= MAX(IFNULL(activity.last_ts, posts.ts)) AS is_seen
		FROM posts
		INNER JOIN members
		    ON posts.space_name = members.space_name
		    AND posts.public_key = members.public_key
		LEFT OUTER JOIN (
		    SELECT posts.id AS id,
		           MAX(MAX(posts.ts), MAX(IFNULL(replies.ts, 0))) AS last_ts
		    FROM posts
		    LEFT OUTER JOIN posts AS replies ON posts.id = replies.parent_id
		    WHERE replies.public_key IS NOT ?
		    GROUP BY posts.id
		) AS activity ON posts.id = activity.id
		LEFT OUTER JOIN posts AS replies ON posts.id = replies.parent_id
		LEFT OUTER JOIN seen
		    ON posts.id = seen.post_id AND seen.public_key = ?
		WHERE posts.space_name = ? AND posts.parent_id = ?
		GROUP BY posts.id
		ORDER BY last_ts DESC
		LIMIT ? OFFSET ?`,
		publicKey, publicKey, spaceName, parentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.ThreadPost
	for rows.Next() {
		var (
			post   domain.ThreadPost
			name   sql.NullString
			seenTs sql.NullInt64
			isSeen sql.NullInt64
		)
		err := rows.Scan(&post.ID, &post.ParentID, &post.Title, &post.Body, &post.Ts,
			&name, &post.PublicKey, &seenTs, &post.LastTs, &isSeen)
		if err != nil {
			return nil, err
		}
		applyPostName(&post.Post, name)
		if seenTs.Valid {
			post.SeenTs = &seenTs.Int64
		}
		post.Seen = isSeen.Valid && isSeen.Int64 == 1
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// MarkSeen upserts the caller's seen marker for a post with the current Unix
// time. A foreign key failure means the post or member row is gone, which the
// caller may not distinguish from "not yours".
func (s *Store) MarkSeen(ctx context.Context, publicKey, postID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO seen (public_key, post_id, ts)
		VALUES (?, ?, strftime('%s', 'now'))`,
		publicKey, postID)
	if isForeignKeyViolation(err) {
		return domainerrors.ErrUnauthorized.WithCause(err)
	}
	return err
}

// MarkUnseen deletes the caller's seen marker for a post. Returns the number
// of rows affected (0 when no marker existed).
func (s *Store) MarkUnseen(ctx context.Context, publicKey, postID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM seen WHERE post_id = ? AND public_key = ?`, postID, publicKey)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// applyPostName fills the author display name, defaulting to the hex public
// key for members who never picked one.
func applyPostName(post *domain.Post, name sql.NullString) {
	if name.Valid && name.String != "" {
		post.Name = name.String
	} else {
		post.Name = post.PublicKey
	}
}
