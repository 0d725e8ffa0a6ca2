// Package formtoken implements the signed, time-limited tokens that grant
// access to public form pages without a login.
//
// A token is two unpadded base64url segments joined by a dot. The first
// segment is a compact JSON payload, the second an HMAC-SHA256 over the raw
// payload bytes. Verification recomputes the MAC over the decoded bytes
// exactly as received, so any re-serialization quirk cannot weaken it.
package formtoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/promonhq/promon/internal/pkg/clock"
)

// Decode failure modes, ordered by verification stage.
var (
	ErrInvalidFormat    = errors.New("formtoken: malformed token")
	ErrInvalidSignature = errors.New("formtoken: signature mismatch")
	ErrInvalidPayload   = errors.New("formtoken: bad payload")
	ErrExpired          = errors.New("formtoken: token expired")
)

const nonceBytes = 8

// Payload is the signed claim set. Field order matters: encoding/json emits
// struct fields in declaration order, and the wire format requires the keys
// sorted alphabetically.
type Payload struct {
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
	Nonce string `json:"nonce"`
	Pid   int64  `json:"pid"`
}

// Codec signs and verifies form tokens with a shared HMAC secret.
type Codec struct {
	secret []byte
	clock  clock.Clocker
	rand   io.Reader
}

// New creates a Codec. The secret must be non-empty; an empty secret would
// make every signature forgeable with an empty key.
func New(secret string, clk clock.Clocker) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("formtoken: secret must not be empty")
	}

	return &Codec{secret: []byte(secret), clock: clk, rand: rand.Reader}, nil
}

// Encode issues a signed token granting access to the programme's form for
// the given recipient until now+ttl.
func (c *Codec) Encode(programmeID int64, email string, ttl time.Duration) (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := io.ReadFull(c.rand, buf); err != nil {
		return "", fmt.Errorf("formtoken: generate nonce: %w", err)
	}

	payload, err := json.Marshal(Payload{
		Email: email,
		Exp:   c.clock.Now().Add(ttl).Unix(),
		Nonce: hex.EncodeToString(buf),
		Pid:   programmeID,
	})
	if err != nil {
		return "", fmt.Errorf("formtoken: marshal payload: %w", err)
	}

	enc := base64.RawURLEncoding
	return enc.EncodeToString(payload) + "." + enc.EncodeToString(c.sign(payload)), nil
}

// Decode verifies a token and returns its payload.
//
// Checks run strictly in order: structural format, base64 decoding, MAC over
// the raw payload bytes, payload shape, then expiry. A token that fails an
// earlier stage never reaches a later one, so a tampered token is always
// reported as invalid rather than expired.
func (c *Codec) Decode(token string) (*Payload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrInvalidFormat
	}

	enc := base64.RawURLEncoding

	rawPayload, err := enc.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidFormat
	}

	rawMAC, err := enc.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidFormat
	}

	if !hmac.Equal(rawMAC, c.sign(rawPayload)) {
		return nil, ErrInvalidSignature
	}

	var p Payload
	if err := json.Unmarshal(rawPayload, &p); err != nil {
		return nil, ErrInvalidPayload
	}

	if p.Email == "" || p.Exp == 0 || p.Nonce == "" || p.Pid == 0 {
		return nil, ErrInvalidPayload
	}

	if c.clock.Now().Unix() > p.Exp {
		return nil, ErrExpired
	}

	return &p, nil
}

func (c *Codec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)

	return mac.Sum(nil)
}

// Hash returns the SHA-256 hex digest of a token. The database stores only
// this digest, never the token itself.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}
