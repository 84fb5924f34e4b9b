package domain

// Post is a forum post as read by a particular member. SeenTs is that
// member's seen marker, nil when they never marked the thread.
type Post struct {
	ID        string `json:"id"`
	ParentID  string `json:"parentId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Ts        int64  `json:"ts"`
	Name      string `json:"name"`
	PublicKey string `json:"publicKey"`
	SeenTs    *int64 `json:"seenTs"`
	// SpaceName scopes the post; clients already know their space.
	SpaceName string `json:"-"`
}

// ThreadPost is a post in a listing, annotated with reply-subtree activity.
// LastTs is the newest timestamp among the post and its direct replies and
// drives sort order. Seen is computed against replies by others only, so a
// thread where the caller wrote the last reply still counts as seen.
type ThreadPost struct {
	Post
	LastTs int64 `json:"lastTs"`
	Seen   bool  `json:"seen"`
}

// IsReply reports whether the post is a reply rather than a top-level thread.
func (p *Post) IsReply() bool {
	return p.ParentID != ""
}
