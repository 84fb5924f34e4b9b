package domain

// SubscriptionKeys are the client keys of a browser push subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is a web-push subscription as produced by
// PushSubscription.toJSON() in the browser. The endpoint digest identifies the
// subscription; delivery targets the endpoint with the client keys.
type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}
