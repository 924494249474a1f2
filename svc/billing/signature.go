package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SignPayload computes the webhook signature over timestamp + "." + payload
// with HMAC-SHA256. The timestamp binding is what makes captured payloads
// unreplayable once they age out.
func SignPayload(secret string, payload []byte, timestamp int64) (string, error) {
	if secret == "" {
		return "", ErrSecretRequired
	}
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.%s", timestamp, payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifySignature checks the signature and the timestamp window. Comparison
// is constant-time. A maxAge of zero disables the window check.
func VerifySignature(secret string, payload []byte, signature string, timestamp int64, maxAge time.Duration) error {
	if secret == "" {
		return ErrSecretRequired
	}
	if signature == "" {
		return ErrInvalidSignature
	}

	if maxAge > 0 {
		age := time.Since(time.Unix(timestamp, 0))
		if age > maxAge {
			return fmt.Errorf("%w: %v old", ErrStaleTimestamp, age)
		}
		// Tolerate a minute of clock skew, reject anything further ahead.
		if age < -time.Minute {
			return fmt.Errorf("%w: timestamp in the future", ErrStaleTimestamp)
		}
	}

	expected, err := SignPayload(secret, payload, timestamp)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
