// Package htmlsanitize strips dangerous markup from user-supplied text
// before it is stored or rendered.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	// ugc keeps the formatting tags user-generated content is allowed to
	// carry (links, emphasis, lists) while removing scripts and handlers.
	ugc = bluemonday.UGCPolicy()

	// strict removes all markup and keeps only the text content.
	strict = bluemonday.StrictPolicy()
)

// Sanitize removes unsafe HTML (scripts, event handlers, javascript:
// URLs) while preserving common formatting tags.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// StripTags removes all HTML, returning plain text. Used for fields that
// should never contain markup, like names and request messages.
func StripTags(s string) string {
	return strict.Sanitize(s)
}
