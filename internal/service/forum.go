package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/psstapp/psst-server/internal/auth"
	"github.com/psstapp/psst-server/internal/domain"
	domainerrors "github.com/psstapp/psst-server/internal/errors"
	"github.com/psstapp/psst-server/internal/store"
)

// defaultPageSize bounds getPosts when the caller gives no limit.
const defaultPageSize = 100

// Notifier delivers a message to every subscribed member of a space,
// except the member named in exceptPublicKey.
type Notifier interface {
	NotifySpace(ctx context.Context, spaceName, exceptPublicKey, message string)
}

// ForumService handles posts, replies, and read state inside a space.
type ForumService struct {
	store    *store.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewForumService creates a new forum service. notifier may be nil when
// push delivery is not configured.
func NewForumService(store *store.Store, notifier Notifier, logger *slog.Logger) *ForumService {
	return &ForumService{
		store:    store,
		notifier: notifier,
		logger:   logger.With("service", "forum"),
	}
}

// AddPostRequest carries a new thread or reply.
type AddPostRequest struct {
	ParentID string `json:"parentId" validate:"omitempty,len=64,hexadecimal"`
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body"`
}

// EditPostRequest carries replacement content for an existing post.
type EditPostRequest struct {
	ID    string `json:"id" validate:"required,len=64,hexadecimal"`
	Title string `json:"title" validate:"required"`
	Body  string `json:"body"`
}

// ListPostsRequest selects a page of threads or of one thread's replies.
type ListPostsRequest struct {
	ParentID string `json:"parentId" validate:"omitempty,len=64,hexadecimal"`
	Limit    int    `json:"limit" validate:"min=0"`
	Offset   int    `json:"offset" validate:"min=0"`
}

// member resolves the caller's membership, mapping both anonymity and
// non-membership onto the same authorization error.
func (s *ForumService) member(ctx context.Context, caller auth.Identity) (*domain.Member, error) {
	if caller == nil {
		return nil, domainerrors.ErrUnauthorized
	}
	m, err := s.store.GetMember(ctx, caller.Hex())
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domainerrors.ErrUnauthorized
	}
	return m, nil
}

// AddPost writes a post into the caller's space and returns its id.
// Subscribed members of the space are notified out of band.
func (s *ForumService) AddPost(ctx context.Context, caller auth.Identity, req AddPostRequest) (string, error) {
	m, err := s.member(ctx, caller)
	if err != nil {
		return "", err
	}
	if err := validateRequest(req); err != nil {
		return "", err
	}

	id, err := randomDigest()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "generate post id")
	}

	post := &domain.Post{
		ID:        id,
		ParentID:  req.ParentID,
		Title:     req.Title,
		Body:      req.Body,
		PublicKey: m.PublicKey,
		SpaceName: m.SpaceName,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return "", err
	}

	if s.notifier != nil {
		// The payload stays generic: titles and author names never reach
		// the third-party push service.
		message := fmt.Sprintf("%s: new post!", m.SpaceName)
		// Delivery must not hold up the RPC response and must survive the
		// request context being torn down.
		go s.notifier.NotifySpace(context.WithoutCancel(ctx), m.SpaceName, m.PublicKey, message)
	}

	return id, nil
}

// EditPost replaces a post's title and body. Only the author may edit;
// anyone else gets the same error as for a post that does not exist.
func (s *ForumService) EditPost(ctx context.Context, caller auth.Identity, req EditPostRequest) error {
	m, err := s.member(ctx, caller)
	if err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	affected, err := s.store.UpdatePost(ctx, req.ID, m.PublicKey, req.Title, req.Body)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

// DeletePost removes a post and, through the schema, its whole reply
// subtree. Only the author may delete.
func (s *ForumService) DeletePost(ctx context.Context, caller auth.Identity, id string) error {
	m, err := s.member(ctx, caller)
	if err != nil {
		return err
	}

	affected, err := s.store.DeletePost(ctx, id, m.PublicKey)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

// GetPost returns one post from the caller's space, or nil when no such
// post is visible to the caller.
func (s *ForumService) GetPost(ctx context.Context, caller auth.Identity, id string) (*domain.Post, error) {
	m, err := s.member(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.store.GetPost(ctx, m.PublicKey, m.SpaceName, id)
}

// GetPosts returns a page of the caller's space. With no parent it pages
// top-level threads ordered by most recent subtree activity; with a
// parent it pages that thread's replies, oldest first.
func (s *ForumService) GetPosts(ctx context.Context, caller auth.Identity, req ListPostsRequest) ([]*domain.ThreadPost, error) {
	m, err := s.member(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = defaultPageSize
	}
	return s.store.ListPosts(ctx, m.PublicKey, m.SpaceName, req.ParentID, req.Limit, req.Offset)
}

// MarkSeen records that the caller has read a post. The post must be
// visible to the caller under the same rules as GetPost.
func (s *ForumService) MarkSeen(ctx context.Context, caller auth.Identity, id string) error {
	m, err := s.member(ctx, caller)
	if err != nil {
		return err
	}
	post, err := s.store.GetPost(ctx, m.PublicKey, m.SpaceName, id)
	if err != nil {
		return err
	}
	if post == nil {
		return domainerrors.ErrUnauthorized
	}
	return s.store.MarkSeen(ctx, m.PublicKey, id)
}

// MarkUnseen clears the caller's read marker for a post. Clearing a
// marker that was never set reports as an authorization failure, the
// same as for an invisible post.
func (s *ForumService) MarkUnseen(ctx context.Context, caller auth.Identity, id string) error {
	m, err := s.member(ctx, caller)
	if err != nil {
		return err
	}
	affected, err := s.store.MarkUnseen(ctx, m.PublicKey, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainerrors.ErrUnauthorized
	}
	return nil
}
