package google

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from a Google admin API, carrying enough
// of the upstream error envelope to classify the failure.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Status is the canonical code string, e.g. "RESOURCE_EXHAUSTED".
	Status string
	// Reason is the first detailed reason, e.g. "limitExceeded".
	Reason string
	// Message is the human-readable upstream message.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("google api: %d %s (%s): %s", e.StatusCode, e.Status, e.Reason, e.Message)
}

// quotaReasons are the 403 reasons Google uses for per-user request quota,
// equivalent to a 429 for retry purposes.
var quotaReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
}

// IsQuota reports whether err is the upstream "temporarily overloaded"
// signal worth retrying with backoff.
func IsQuota(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 429 ||
		(apiErr.StatusCode == 403 && quotaReasons[apiErr.Reason])
}

// IsNotFound reports whether the targeted resource no longer exists
// upstream (deleted externally, bad path).
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsFeatureLimit reports the upstream-enforced resource ceiling (e.g. too
// many containers in a GTM account), distinct from both request quota and
// the local subscription tier.
func IsFeatureLimit(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == 403 && apiErr.Reason == "limitExceeded"
}

// IsAuth reports an invalid or expired bearer token.
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
