package service

import (
	"context"
	"testing"
	"time"

	domainerrors "github.com/psstapp/psst-server/internal/errors"
)

// recordingNotifier captures NotifySpace calls for assertions.
type recordingNotifier struct {
	calls chan notifyCall
}

type notifyCall struct {
	spaceName       string
	exceptPublicKey string
	message         string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{calls: make(chan notifyCall, 8)}
}

func (n *recordingNotifier) NotifySpace(_ context.Context, spaceName, exceptPublicKey, message string) {
	n.calls <- notifyCall{spaceName, exceptPublicKey, message}
}

func newForumFixture(t *testing.T) (*SpaceService, *ForumService, *recordingNotifier) {
	t.Helper()
	st := newTestStore(t)
	spaces := NewSpaceService(st, testLogger())
	notifier := newRecordingNotifier()
	forum := NewForumService(st, notifier, testLogger())
	return spaces, forum, notifier
}

func TestForumService_AddPost(t *testing.T) {
	spaces, forum, notifier := newForumFixture(t)
	founder, _ := founderWithSpace(t, spaces, "quilting", 1)
	ctx := context.Background()

	id, err := forum.AddPost(ctx, founder, AddPostRequest{Title: "hello", Body: "first post"})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}
	if len(id) != 64 {
		t.Errorf("post id length = %d, want 64", len(id))
	}

	post, err := forum.GetPost(ctx, founder, id)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post == nil || post.Title != "hello" || post.Body != "first post" {
		t.Errorf("GetPost() = %+v, want hello/first post", post)
	}

	select {
	case call := <-notifier.calls:
		if call.spaceName != "quilting" {
			t.Errorf("notified space = %q, want quilting", call.spaceName)
		}
		if call.exceptPublicKey != founder.Hex() {
			t.Errorf("notify except = %q, want author", call.exceptPublicKey)
		}
		if call.message != "quilting: new post!" {
			t.Errorf("notify message = %q, want generic new-post text", call.message)
		}
	case <-time.After(time.Second):
		t.Error("AddPost() did not notify the space")
	}
}

func TestForumService_AddPost_NonMember(t *testing.T) {
	_, forum, _ := newForumFixture(t)
	stranger, _ := testKeyPair(9)

	_, err := forum.AddPost(context.Background(), stranger, AddPostRequest{Title: "hi"})
	if !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
		t.Errorf("AddPost() error = %v, want ErrUnauthorized", err)
	}

	_, err = forum.AddPost(context.Background(), nil, AddPostRequest{Title: "hi"})
	if !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
		t.Errorf("AddPost(nil) error = %v, want ErrUnauthorized", err)
	}
}

func TestForumService_AddPost_MissingTitle(t *testing.T) {
	spaces, forum, _ := newForumFixture(t)
	founder, _ := founderWithSpace(t, spaces, "quilting", 1)

	_, err := forum.AddPost(context.Background(), founder, AddPostRequest{Body: "no title"})
	if !domainerrors.Is(err, domainerrors.ErrConstraint) {
		t.Errorf("AddPost() error = %v, want ErrConstraint", err)
	}
}

func TestForumService_EditPost_AuthorOnly(t *testing.T) {
	spaces, forum, _ := newForumFixture(t)
	founder, adminPriv := founderWithSpace(t, spaces, "quilting", 1)
	bob := joinedMember(t, spaces, adminPriv, "bob", 2)
	ctx := context.Background()

	id, err := forum.AddPost(ctx, founder, AddPostRequest{Title: "hello"})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}

	err = forum.EditPost(ctx, bob, EditPostRequest{ID: id, Title: "hijacked"})
	if !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
		t.Errorf("EditPost() by non-author error = %v, want ErrUnauthorized", err)
	}

	if err := forum.EditPost(ctx, founder, EditPostRequest{ID: id, Title: "edited", Body: "new body"}); err != nil {
		t.Fatalf("EditPost() by author error = %v", err)
	}
	post, err := forum.GetPost(ctx, founder, id)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post.Title != "edited" || post.Body != "new body" {
		t.Errorf("post after edit = %+v, want edited/new body", post)
	}
}

func TestForumService_DeletePost_AuthorOnly(t *testing.T) {
	spaces, forum, _ := newForumFixture(t)
	founder, adminPriv := founderWithSpace(t, spaces, "quilting", 1)
	bob := joinedMember(t, spaces, adminPriv, "bob", 2)
	ctx := context.Background()

	id, err := forum.AddPost(ctx, founder, AddPostRequest{Title: "hello"})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}

	err = forum.DeletePost(ctx, bob, id)
	if !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
		t.Errorf("DeletePost() by non-author error = %v, want ErrUnauthorized", err)
	}

	if err := forum.DeletePost(ctx, founder, id); err != nil {
		t.Fatalf("DeletePost() by author error = %v", err)
	}
	post, err := forum.GetPost(ctx, founder, id)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post != nil {
		t.Errorf("GetPost() after delete = %+v, want nil", post)
	}
}

func TestForumService_GetPost_CrossSpace(t *testing.T) {
	spaces, forum, _ := newForumFixture(t)
	founder, _ := founderWithSpace(t, spaces, "quilting", 1)
	outsider, _ := founderWithSpace(t, spaces, "knitting", 2)
	ctx := context.Background()

	id, err := forum.AddPost(ctx, founder, AddPostRequest{Title: "hello"})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}

	post, err := forum.GetPost(ctx, outsider, id)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post != nil {
		t.Errorf("GetPost() across spaces = %+v, want nil", post)
	}
}

func TestForumService_GetPosts(t *testing.T) {
	spaces, forum, _ := newForumFixture(t)
	founder, _ := founderWithSpace(t, spaces, "quilting", 1)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		id, err := forum.AddPost(ctx, founder, AddPostRequest{Title: title})
		if err != nil {
			t.Fatalf("AddPost() error = %v", err)
		}
		ids = append(ids, id)
	}
	if _, err := forum.AddPost(ctx, founder, AddPostRequest{ParentID: ids[0], Title: "re: first"}); err != nil {
		t.Fatalf("AddPost() reply error = %v", err)
	}

	threads, err := forum.GetPosts(ctx, founder, ListPostsRequest{})
	if err != nil {
		t.Fatalf("GetPosts() error = %v", err)
	}
	if len(threads) != 3 {
		t.Fatalf("GetPosts() returned %d threads, want 3", len(threads))
	}

	replies, err := forum.GetPosts(ctx, founder, ListPostsRequest{ParentID: ids[0]})
	if err != nil {
		t.Fatalf("GetPosts(parent) error = %v", err)
	}
	if len(replies) != 1 || replies[0].Title != "re: first" {
		t.Errorf("GetPosts(parent) = %+v, want one reply", replies)
	}

	page, err := forum.GetPosts(ctx, founder, ListPostsRequest{Limit: 2})
	if err != nil {
		t.Fatalf("GetPosts(limit) error = %v", err)
	}
	if len(page) != 2 {
		t.Errorf("GetPosts(limit=2) returned %d threads, want 2", len(page))
	}
}

func TestForumService_MarkSeen(t *testing.T) {
	spaces, forum, _ := newForumFixture(t)
	founder, adminPriv := founderWithSpace(t, spaces, "quilting", 1)
	bob := joinedMember(t, spaces, adminPriv, "bob", 2)
	ctx := context.Background()

	id, err := forum.AddPost(ctx, founder, AddPostRequest{Title: "hello"})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}

	if err := forum.MarkSeen(ctx, bob, id); err != nil {
		t.Fatalf("MarkSeen() error = %v", err)
	}
	post, err := forum.GetPost(ctx, bob, id)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post.SeenTs == nil {
		t.Error("SeenTs = nil after MarkSeen")
	}

	if err := forum.MarkUnseen(ctx, bob, id); err != nil {
		t.Fatalf("MarkUnseen() error = %v", err)
	}
	post, err = forum.GetPost(ctx, bob, id)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post.SeenTs != nil {
		t.Errorf("SeenTs = %v after MarkUnseen, want nil", *post.SeenTs)
	}

	err = forum.MarkUnseen(ctx, bob, id)
	if !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
		t.Errorf("MarkUnseen() with no marker error = %v, want ErrUnauthorized", err)
	}
}

func TestForumService_MarkSeen_InvisiblePost(t *testing.T) {
	spaces, forum, _ := newForumFixture(t)
	founder, _ := founderWithSpace(t, spaces, "quilting", 1)
	outsider, _ := founderWithSpace(t, spaces, "knitting", 2)
	ctx := context.Background()

	id, err := forum.AddPost(ctx, founder, AddPostRequest{Title: "hello"})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}

	err = forum.MarkSeen(ctx, outsider, id)
	if !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
		t.Errorf("MarkSeen() across spaces error = %v, want ErrUnauthorized", err)
	}

	err = forum.MarkSeen(ctx, founder, "0000000000000000000000000000000000000000000000000000000000000000")
	if !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
		t.Errorf("MarkSeen() unknown post error = %v, want ErrUnauthorized", err)
	}
}
