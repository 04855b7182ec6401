// Package paycode implements the 7-digit routing code format used by
// payers to address a wallet: a 2-digit entity-type prefix, a 4-digit
// zero-padded sequence and a single checksum digit.
package paycode

import (
	"fmt"
	"regexp"
	"strings"
)

// CodeLength is the fixed length of a routing code.
const CodeLength = 7

// MaxSequence is the last allocatable sequence number per prefix.
const MaxSequence = 9999

var (
	digitsOnly   = regexp.MustCompile(`^\d{7}$`)
	platePattern = regexp.MustCompile(`^[A-Z]{3}\d{3}[A-Z]$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// RefClass is the classification of a normalized payment reference.
type RefClass int

const (
	RefClassUnknown RefClass = iota
	RefClassRoutingCode
	RefClassPlate
)

// Checksum reduces the digit sum of base to a single digit by iterated
// digit summing.
func Checksum(base string) int {
	sum := 0
	for _, r := range base {
		sum += int(r - '0')
	}
	for sum >= 10 {
		next := 0
		for sum > 0 {
			next += sum % 10
			sum /= 10
		}
		sum = next
	}
	return sum
}

// Format builds a routing code from a 2-digit prefix and a sequence in
// [1, MaxSequence].
func Format(prefix string, seq int) (string, error) {
	if len(prefix) != 2 || !isDigits(prefix) {
		return "", fmt.Errorf("paycode: prefix must be 2 digits, got %q", prefix)
	}
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("paycode: sequence %d out of range", seq)
	}
	base := fmt.Sprintf("%s%04d", prefix, seq)
	return fmt.Sprintf("%s%d", base, Checksum(base)), nil
}

// Validate reports whether code is a well-formed routing code. It fails
// closed: anything other than 7 digits with a matching checksum is false.
func Validate(code string) bool {
	if !digitsOnly.MatchString(code) {
		return false
	}
	return Checksum(code[:6]) == int(code[6]-'0')
}

// Normalize canonicalizes a raw inbound payment reference: trim,
// uppercase, strip all interior whitespace.
func Normalize(raw string) string {
	return whitespace.ReplaceAllString(strings.ToUpper(strings.TrimSpace(raw)), "")
}

// Classify identifies a normalized reference. A 7-digit string with a
// bad checksum classifies as Unknown, not as a routing code.
func Classify(ref string) RefClass {
	switch {
	case Validate(ref):
		return RefClassRoutingCode
	case platePattern.MatchString(ref):
		return RefClassPlate
	default:
		return RefClassUnknown
	}
}

// LooksNumeric reports whether ref is 7 digits regardless of checksum.
// Used to distinguish a checksum failure from a free-form reference.
func LooksNumeric(ref string) bool {
	return digitsOnly.MatchString(ref)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
