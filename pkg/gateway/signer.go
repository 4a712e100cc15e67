package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"
)

const (
	HeaderTimestamp      = "X-Timestamp"
	HeaderSignature      = "X-Signature"
	HeaderIdempotencyKey = "X-Idempotency-Key"

	// DefaultSignatureTolerance is how far a signed timestamp may be from now.
	DefaultSignatureTolerance = 5 * time.Minute
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleSignature   = errors.New("webhook timestamp outside tolerance")
)

// Signer returns the headers that authenticate one request body.
type Signer func(body []byte) (http.Header, error)

// HMACSigner signs "timestamp.body" with HMAC-SHA256 and sends the hex
// digest along with the timestamp.
func HMACSigner(secret string) Signer {
	return hmacSigner(secret, time.Now)
}

func hmacSigner(secret string, now func() time.Time) Signer {
	return func(body []byte) (http.Header, error) {
		ts := strconv.FormatInt(now().Unix(), 10)
		h := http.Header{}
		h.Set(HeaderTimestamp, ts)
		h.Set(HeaderSignature, Sign(secret, ts, body))
		return h, nil
	}
}

// Sign computes the signature sent by HMACSigner.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches timestamp and body.
func Verify(secret, timestamp string, body []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	actual, _ := hex.DecodeString(Sign(secret, timestamp, body))
	return hmac.Equal(expected, actual)
}

// Verifier authenticates signed webhooks and rejects replays of old ones.
type Verifier struct {
	secret    string
	tolerance time.Duration

	Now func() time.Time
}

// NewVerifier creates a Verifier. A non-positive tolerance uses
// DefaultSignatureTolerance.
func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultSignatureTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance, Now: time.Now}
}

// Verify checks the signature of body and that timestamp, in Unix seconds,
// is within the tolerance of the current time.
func (v *Verifier) Verify(timestamp string, body []byte, signature string) error {
	if !Verify(v.secret, timestamp, body, signature) {
		return ErrInvalidSignature
	}
	sec, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	skew := v.Now().Sub(time.Unix(sec, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.tolerance {
		return ErrStaleSignature
	}
	return nil
}
