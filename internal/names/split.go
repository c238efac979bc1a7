// Package names decomposes free-text display names.
package names

import (
	"regexp"
	"strings"
)

var initialRe = regexp.MustCompile(`^[A-Z]\.$`)

// Parts is a decomposed name.
type Parts struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Split breaks a full name into first and last name. The last token is the
// last name; a trailing single initial ("Harry S.") is kept as the last name
// rather than merged into the first.
func Split(fullName string) Parts {
	tokens := strings.Fields(fullName)
	switch {
	case len(tokens) == 0:
		return Parts{}
	case len(tokens) == 1:
		return Parts{FirstName: tokens[0]}
	case len(tokens) == 2 && initialRe.MatchString(tokens[1]):
		return Parts{FirstName: tokens[0], LastName: tokens[1]}
	default:
		last := len(tokens) - 1
		return Parts{
			FirstName: strings.Join(tokens[:last], " "),
			LastName:  tokens[last],
		}
	}
}

// Join is the inverse of Split for display purposes.
func Join(first, last string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(first+" "+last), " "))
}
