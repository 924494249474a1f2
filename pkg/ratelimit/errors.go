package ratelimit

import "errors"

var (
	// ErrAcquireTimeout is returned when capacity could not be granted
	// within the caller's deadline. The batch must fail rather than
	// silently proceed past the upstream quota.
	ErrAcquireTimeout = errors.New("ratelimit: timed out waiting for capacity")

	ErrStoreRequired = errors.New("ratelimit: store is required")
	ErrInvalidLimit  = errors.New("ratelimit: limit must be positive")
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")
	ErrKeyRequired   = errors.New("ratelimit: key is required")
)
