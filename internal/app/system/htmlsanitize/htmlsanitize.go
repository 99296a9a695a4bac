// Package htmlsanitize cleans text that viewers attach to saved dashboard
// views. Names are reduced to plain text; notes keep a small set of inline
// formatting tags.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxNameLength is the longest view name kept, in runes.
const MaxNameLength = 80

var (
	notePolicy *bluemonday.Policy
	strict     *bluemonday.Policy
	policyOnce sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		notePolicy = bluemonday.NewPolicy()
		notePolicy.AllowElements("p", "br", "a", "b", "strong", "i", "em", "u", "s", "ul", "ol", "li")
		notePolicy.AllowAttrs("href").OnElements("a")
		notePolicy.AllowStandardURLs()
		notePolicy.RequireNoFollowOnLinks(true)
		notePolicy.AddTargetBlankToFullyQualifiedLinks(true)

		strict = bluemonday.StrictPolicy()
	})
	return notePolicy, strict
}

// Sanitize cleans a view note, keeping inline formatting and safe links.
func Sanitize(note string) string {
	if note == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(p.Sanitize(note))
}

// SanitizeToHTML sanitizes a note and returns it as template.HTML,
// which is safe to render directly in Go templates without escaping.
func SanitizeToHTML(note string) template.HTML {
	return template.HTML(Sanitize(note))
}

// ViewName strips every tag from s, collapses whitespace and truncates
// to MaxNameLength runes.
func ViewName(s string) string {
	_, p := policies()
	clean := strings.Join(strings.Fields(p.Sanitize(s)), " ")
	// Names are escaped again by html/template on render.
	clean = html.UnescapeString(clean)
	if utf8.RuneCountInString(clean) > MaxNameLength {
		clean = strings.TrimSpace(string([]rune(clean)[:MaxNameLength]))
	}
	return clean
}
