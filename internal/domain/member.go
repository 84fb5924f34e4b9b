package domain

// Member is the durable record binding a public key to a space. A key belongs
// to at most one space, ever; the record is created exactly once, when an
// invite is redeemed (or when a founder creates a space), and is immutable
// afterwards.
type Member struct {
	// PublicKey is the member's ed25519 public key, lowercase hex.
	PublicKey string `json:"publicKey"`
	SpaceName string `json:"spaceName"`
	// Name is the display name. Falls back to the hex public key when the
	// member never picked one.
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	// InviteFingerprint is the digest of the redeemed invite token. Globally
	// unique, which is what enforces single-use redemption. Founders carry the
	// digest of their own public key instead of a real invite.
	InviteFingerprint string `json:"-"`
}

// MemberSpace is the join view of a member and their space, as returned to
// the member's own client.
type MemberSpace struct {
	Name        string `json:"name"`
	IsAdmin     bool   `json:"isAdmin"`
	SpaceName   string `json:"spaceName"`
	JitsiKey    string `json:"jitsiKey"`
	EtherpadKey string `json:"etherpadKey"`
}

// InviteDetails describes an invite's issuer to a prospective member.
type InviteDetails struct {
	UserName  string `json:"userName"`
	SpaceName string `json:"spaceName"`
}
