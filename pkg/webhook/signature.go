// Package webhook verifies payment-provider webhook signatures.
//
// The provider signs the raw request body with a shared secret and sends the
// result in a single header of the form
//
//	t=<unix timestamp>,v1=<hex hmac-sha256 of "<timestamp>.<body>">
//
// Verification recomputes the HMAC over the exact raw bytes, compares in
// constant time, and rejects stale timestamps to prevent replays.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingSignature  = errors.New("webhook: signature header missing or malformed")
	ErrSignatureMismatch = errors.New("webhook: signature mismatch")
	ErrTimestampTooOld   = errors.New("webhook: signature timestamp outside tolerance")
	ErrMissingSecret     = errors.New("webhook: signing secret is required")
)

// Sign computes the signature header value for a payload at the given time.
// Used by tests and by outbound webhook delivery.
func Sign(secret string, payload []byte, at time.Time) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeSignature(secret, payload, ts))
}

// Verify validates the signature header against the raw payload. tolerance
// bounds the accepted age of the timestamp; zero disables the check.
func Verify(secret string, payload []byte, header string, tolerance time.Duration) error {
	if secret == "" {
		return ErrMissingSecret
	}

	ts, signatures, err := parseHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		age := time.Since(time.Unix(ts, 0))
		if age > tolerance {
			return ErrTimestampTooOld
		}
		// Allow modest clock skew but reject far-future timestamps.
		if age < -5*time.Minute {
			return ErrTimestampTooOld
		}
	}

	expected := computeSignature(secret, payload, ts)
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrSignatureMismatch
}

// parseHeader extracts the timestamp and all v1 signatures from the header.
// Multiple v1 entries are allowed so the provider can rotate secrets.
func parseHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrMissingSignature
	}

	var ts int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrMissingSignature
			}
			ts = parsed
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if ts == 0 || len(signatures) == 0 {
		return 0, nil, ErrMissingSignature
	}
	return ts, signatures, nil
}

func computeSignature(secret string, payload []byte, ts int64) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", ts)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
