package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedHeader   = errors.New("malformed signature header")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrSignatureExpired  = errors.New("signature timestamp outside tolerance")
	ErrNoSecrets         = errors.New("no webhook secrets configured")
)

// Header is the parsed form of a "t=<ts>,v1=<hex>[,v1=<hex>...]" value.
type Header struct {
	Timestamp  string
	Signatures []string
}

// ParseHeader splits the header on commas and keeps the first t and every v1.
// Parts without a key or value are skipped; unknown schemes are ignored.
func ParseHeader(header string) (Header, error) {
	var h Header
	for _, part := range strings.Split(header, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		if key == "" || value == "" {
			continue
		}
		switch key {
		case "t":
			if h.Timestamp == "" {
				h.Timestamp = value
			}
		case "v1":
			h.Signatures = append(h.Signatures, value)
		}
	}
	if h.Timestamp == "" || len(h.Signatures) == 0 {
		return Header{}, ErrMalformedHeader
	}
	return h, nil
}

// Sign computes the hex HMAC-SHA256 of "<timestamp>.<body>" under secret.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks header against the raw body bytes for a single secret.
func Verify(header string, body []byte, secret string) error {
	h, err := ParseHeader(header)
	if err != nil {
		return err
	}
	if !h.matches(body, secret) {
		return ErrSignatureMismatch
	}
	return nil
}

func (h Header) matches(body []byte, secret string) bool {
	expected := []byte(Sign(secret, h.Timestamp, body))
	for _, candidate := range h.Signatures {
		if hmac.Equal(expected, []byte(candidate)) {
			return true
		}
	}
	return false
}

// Verifier authenticates webhook deliveries against one or more secrets so a
// secret can be rotated without dropping in-flight events.
type Verifier struct {
	secrets   []string
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier builds a Verifier. A zero tolerance disables the freshness check.
func NewVerifier(secrets []string, tolerance time.Duration) *Verifier {
	return &Verifier{secrets: secrets, tolerance: tolerance, now: time.Now}
}

// Verify succeeds when any v1 signature matches any configured secret.
func (v *Verifier) Verify(header string, body []byte) error {
	if len(v.secrets) == 0 {
		return ErrNoSecrets
	}
	h, err := ParseHeader(header)
	if err != nil {
		return err
	}

	matched := false
	for _, secret := range v.secrets {
		if h.matches(body, secret) {
			matched = true
			break
		}
	}
	if !matched {
		return ErrSignatureMismatch
	}

	if v.tolerance > 0 {
		ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
		if err != nil {
			return ErrMalformedHeader
		}
		skew := v.now().Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > v.tolerance {
			return ErrSignatureExpired
		}
	}
	return nil
}
