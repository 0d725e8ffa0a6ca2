// Package credential generates the short-lived login artifacts used by the
// OTP flow, namely one-time codes and opaque session tokens.
package credential

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/promonhq/promon/internal/pkg/clock"
)

const (
	otpMin  = 100000
	otpSpan = 900000

	sessionTokenBytes = 16
)

// Generator produces OTP codes, session tokens, and their expiry timestamps.
type Generator struct {
	rand  io.Reader
	clock clock.Clocker
}

// New creates a Generator backed by crypto/rand.
func New(clk clock.Clocker) *Generator {
	return &Generator{rand: rand.Reader, clock: clk}
}

// OTP returns a six-digit numeric code drawn uniformly from [100000, 999999].
func (g *Generator) OTP() (string, error) {
	n, err := rand.Int(g.rand, big.NewInt(otpSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

// OTPExpiry returns the moment an OTP issued now stops being accepted.
func (g *Generator) OTPExpiry(ttl time.Duration) time.Time {
	return g.clock.Now().Add(ttl)
}

// SessionToken returns a 128-bit random token encoded as 32 lowercase hex
// characters. The raw value is handed to the client; only this value, not a
// derivative, is looked up in the session store.
func (g *Generator) SessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// SessionExpiry returns the moment a session issued now stops being accepted.
func (g *Generator) SessionExpiry(ttl time.Duration) time.Time {
	return g.clock.Now().Add(ttl)
}
