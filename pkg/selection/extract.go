// Package selection obtains the user's selected text and turns it into a
// plain translation query.
package selection

import "strings"

// Extract returns the current selection.
//
// With an active editor the editor's selection is returned verbatim, even
// when empty. Otherwise the read-only view's selection is used when present
// and not blank. Nil callbacks count as "no selection".
func Extract(hasActiveEditor bool, editorSelection func() string, viewSelection func() (string, bool)) string {
	if hasActiveEditor {
		if editorSelection == nil {
			return ""
		}
		return editorSelection()
	}

	if viewSelection == nil {
		return ""
	}
	text, ok := viewSelection()
	if !ok || strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
