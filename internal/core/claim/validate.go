package claim

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMinVerificationText is the minimum length, in characters, of any
// free-text ownership evidence: claim proof and identity answers alike.
const DefaultMinVerificationText = 20

// MaxMessageLength bounds chat text and individual answers.
const MaxMessageLength = 2000

var codeRe = regexp.MustCompile(`^[0-9]{4}$`)

// ValidateProof checks the optional proof text supplied at claim creation.
func ValidateProof(proof string, minLen int, required bool) error {
	p := strings.TrimSpace(proof)
	if p == "" {
		if required {
			return fmt.Errorf("%w: proof is required", ErrValidation)
		}
		return nil
	}
	if n := utf8.RuneCountInString(p); n < minLen {
		return fmt.Errorf("%w: proof must be at least %d characters, got %d", ErrValidation, minLen, n)
	}
	if utf8.RuneCountInString(p) > MaxMessageLength {
		return fmt.Errorf("%w: proof is too long", ErrValidation)
	}
	return nil
}

// ValidateMessageText checks chat text.
func ValidateMessageText(content string) error {
	c := strings.TrimSpace(content)
	if c == "" {
		return fmt.Errorf("%w: message is empty", ErrValidation)
	}
	if utf8.RuneCountInString(c) > MaxMessageLength {
		return fmt.Errorf("%w: message is too long", ErrValidation)
	}
	return nil
}

// ValidateCodeFormat accepts exactly four ASCII digits, surrounding spaces ignored.
func ValidateCodeFormat(code string) (string, error) {
	c := strings.TrimSpace(code)
	if !codeRe.MatchString(c) {
		return "", fmt.Errorf("%w: handover code must be 4 digits", ErrValidation)
	}
	return c, nil
}
