package sim

import (
	"fmt"
	"strings"
)

// Gender is the single attribute the model tracks per employee.
type Gender string

const (
	Men   Gender = "men"
	Women Gender = "women"
)

// genderAliases maps accepted spellings (lower-cased) to a Gender.
var genderAliases = map[string]Gender{
	"men": Men, "man": Men, "male": Men, "m": Men,
	"women": Women, "woman": Women, "female": Women, "w": Women, "f": Women,
}

// ParseGender maps a user-supplied tag onto Men or Women.
// Matching is case-insensitive and tolerates surrounding whitespace.
func ParseGender(s string) (Gender, error) {
	if g, ok := genderAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown gender %q; valid: men, women", ErrConfiguration, s)
}

// IsValid reports whether g is Men or Women.
func (g Gender) IsValid() bool {
	return g == Men || g == Women
}

// Other returns the opposite tag.
func (g Gender) Other() Gender {
	if g == Men {
		return Women
	}
	return Men
}

func (g Gender) String() string { return string(g) }
