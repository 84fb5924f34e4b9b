package domain

// Secret is a member's encrypted vault blob. The server never interprets it;
// value and nonce are produced and consumed client-side.
type Secret struct {
	Value []byte
	Nonce []byte
}
