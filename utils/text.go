package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var ErrInvalidUsername = errors.New("username must be 3-32 characters of a-z, 0-9, '_' or '-', starting with a letter or digit")

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,31}$`)

var folder = cases.Fold()

// NormalizeUsername canonicalizes user input (NFKC + case folding) and checks
// the allowed alphabet. Two inputs that normalize equal are the same username.
func NormalizeUsername(in string) (string, error) {
	u := folder.String(norm.NFKC.String(strings.TrimSpace(in)))
	if !usernamePattern.MatchString(u) {
		return "", ErrInvalidUsername
	}
	return u, nil
}

// SuggestUsername derives a valid username from free text such as an email
// local part or a display name. Non-ASCII letters are transliterated.
func SuggestUsername(seed string) string {
	if at := strings.IndexByte(seed, '@'); at > 0 {
		seed = seed[:at]
	}
	s := strings.ReplaceAll(slug.Make(seed), "-", "_")
	s = strings.Trim(s, "_")
	if len(s) > 24 {
		s = strings.TrimRight(s[:24], "_")
	}
	if len(s) < 3 {
		s = "member"
	}
	return s
}

// Slugify is slug.Make capped at max bytes without a trailing dash.
func Slugify(s string, max int) string {
	out := slug.Make(s)
	if max > 0 && len(out) > max {
		out = strings.TrimRight(out[:max], "-")
	}
	return out
}
