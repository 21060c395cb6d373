// Package handover implements the one-time code used to prove a physical
// handover: generation, expiry and constant-time verification.
package handover

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	// CodeDigits is the length of a handover code.
	CodeDigits = 4
	// DefaultTTL bounds the lifetime of an issued code.
	DefaultTTL = 15 * time.Minute
	// DefaultMaxAttempts is how many wrong guesses a single code tolerates.
	DefaultMaxAttempts = 5
)

var codeSpace = big.NewInt(10000)

// Generate returns a uniformly random zero-padded 4-digit code.
// r is usually crypto/rand.Reader; tests may pass a deterministic reader.
func Generate(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate handover code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeDigits, n.Int64()), nil
}

// Ticket is the server-side state of one issued code.
type Ticket struct {
	Code           string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	FailedAttempts int
}

// NewTicket issues a ticket valid for ttl starting at now.
func NewTicket(code string, now time.Time, ttl time.Duration) Ticket {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Ticket{Code: code, IssuedAt: now, ExpiresAt: now.Add(ttl)}
}

// Expired reports whether the TTL has elapsed at now.
func (t Ticket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Verdict is the outcome of checking an entered code against a ticket.
type Verdict int

const (
	// Accepted: digits match and the ticket is live. The ticket must be consumed.
	Accepted Verdict = iota
	// Mismatch: wrong digits, attempts remain.
	Mismatch
	// Locked: wrong digits and the attempt budget is now spent. The ticket must be revoked.
	Locked
	// Expired: the TTL elapsed; digits are not even compared.
	Expired
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Mismatch:
		return "mismatch"
	case Locked:
		return "locked"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Check evaluates input against the ticket at now. It never mutates the ticket;
// callers persist FailedAttempts+1 on Mismatch and Locked.
func Check(t Ticket, input string, now time.Time, maxAttempts int) Verdict {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if t.Expired(now) {
		return Expired
	}
	if t.FailedAttempts >= maxAttempts {
		return Locked
	}
	if subtle.ConstantTimeCompare([]byte(t.Code), []byte(input)) == 1 {
		return Accepted
	}
	if t.FailedAttempts+1 >= maxAttempts {
		return Locked
	}
	return Mismatch
}
