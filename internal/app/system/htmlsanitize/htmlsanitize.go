// Package htmlsanitize cleans user-generated HTML before it is stored.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		ugc = bluemonday.UGCPolicy()
		ugc.AllowURLSchemes("http", "https", "mailto")
		strict = bluemonday.StrictPolicy()
	})
	return ugc, strict
}

// Sanitize keeps safe formatting (paragraphs, emphasis, lists, links,
// tables, images) and strips scripts, event handlers and unsafe URLs.
// Used for post and comment bodies.
func Sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(p.Sanitize(s))
}

// StripTags removes all markup, keeping the text. Used for titles and tags.
func StripTags(s string) string {
	_, p := policies()
	return strings.TrimSpace(p.Sanitize(s))
}
