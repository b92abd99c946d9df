// Package normalize canonicalizes user-supplied strings before storage.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and keeps case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Tag lowercases and trims a tag.
func Tag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tags normalizes every tag and drops empties and duplicates, keeping order.
func Tags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = Tag(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// StateKey folds a state name for comparison ("Tamil Nadu" == "tamil nadu").
func StateKey(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Answer maps a free-form quiz answer to "Yes" or "No".
func Answer(yes bool) string {
	if yes {
		return "Yes"
	}
	return "No"
}
