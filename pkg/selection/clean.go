package selection

import (
	"regexp"
	"strings"
)

// maxStripPasses bounds StripMarkup; nested markup rarely needs more than two.
const maxStripPasses = 8

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Order matters: block-level markers first, then links (whose labels may
// hold emphasis), then inline emphasis.
var markupRules = []rule{
	// code fences keep their content, drop the fence line
	{regexp.MustCompile("(?m)^[ \\t]*(?:```|~~~)[^\\n]*$"), ""},
	{regexp.MustCompile(`<[^<>\n]+>`), ""},
	{regexp.MustCompile(`!?\[\[(?:[^\]|\n]*\|)?([^\]|\n]*)\]\]`), "$1"},
	{regexp.MustCompile(`!\[([^\]\n]*)\]\([^)\n]*\)`), "$1"},
	{regexp.MustCompile(`\[([^\]\n]*)\]\([^)\n]*\)`), "$1"},
	{regexp.MustCompile(`\[\^[^\]\n]+\]`), ""},
	{regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+[.)])[ \t]+(?:\[[ xX]\][ \t]+)?`), ""},
	{regexp.MustCompile(`\*\*([^*\n]+)\*\*`), "$1"},
	{regexp.MustCompile(`\*([^*\n]+)\*`), "$1"},
	{regexp.MustCompile(`\b__([^_\n]+)__\b`), "$1"},
	{regexp.MustCompile(`\b_([^_\n]+)_\b`), "$1"},
	{regexp.MustCompile(`~~([^~\n]+)~~`), "$1"},
	{regexp.MustCompile(`==([^=\n]+)==`), "$1"},
	{regexp.MustCompile("`([^`\\n]+)`"), "$1"},
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// StripMarkup removes Markdown and wiki-link markup, keeping the visible text.
// Rules are reapplied until the text stops changing.
func StripMarkup(text string) string {
	for i := 0; i < maxStripPasses; i++ {
		next := text
		for _, r := range markupRules {
			next = r.re.ReplaceAllString(next, r.repl)
		}
		if next == text {
			break
		}
		text = next
	}
	return text
}

// Clean turns raw selected text into a plain query: markup is stripped,
// every character that is neither a word character nor whitespace becomes a
// space, and the result is trimmed.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	plain := nonWord.ReplaceAllString(StripMarkup(raw), " ")
	return strings.TrimSpace(plain)
}
