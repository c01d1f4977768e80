package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "field is required",
		},
	}
}

// MaxLenString limits the value to max runes.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
		},
	}
}

// MaxSessionIDLength bounds session identifiers. They are used as directory names.
const MaxSessionIDLength = 64

var sessionIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidSessionID accepts identifiers that are safe to use as a path segment:
// ASCII letters, digits, dashes and underscores, starting with a letter or digit.
func ValidSessionID(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= MaxSessionIDLength && sessionIDRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be 1-%d letters, digits, dashes or underscores", MaxSessionIDLength),
		},
	}
}
