package ratelimiter

// DefaultIdentifier is the window used when the caller has no identity of
// its own.
const DefaultIdentifier = "default"
