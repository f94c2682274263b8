package selection

import (
	"regexp"
	"testing"
)

func TestExtract(t *testing.T) {
	editor := func(s string) func() string { return func() string { return s } }
	view := func(s string, ok bool) func() (string, bool) { return func() (string, bool) { return s, ok } }

	tests := []struct {
		name      string
		hasEditor bool
		editor    func() string
		view      func() (string, bool)
		want      string
	}{
		{name: "editor selection verbatim", hasEditor: true, editor: editor("  Hello **world** "), view: view("ignored", true), want: "  Hello **world** "},
		{name: "editor empty selection wins over view", hasEditor: true, editor: editor(""), view: view("view text", true), want: ""},
		{name: "view selection used without editor", hasEditor: false, editor: editor("ignored"), view: view(" read only ", true), want: " read only "},
		{name: "blank view selection", hasEditor: false, view: view(" \n\t ", true), want: ""},
		{name: "absent view selection", hasEditor: false, view: view("stale", false), want: ""},
		{name: "both empty", hasEditor: false, editor: editor(""), view: view("", false), want: ""},
		{name: "nil callbacks", hasEditor: false, want: ""},
		{name: "nil editor callback", hasEditor: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.hasEditor, tt.editor, tt.view); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "bold and punctuation", in: "**Hello**, world!", want: "Hello  world"},
		{name: "heading", in: "## Getting started", want: "Getting started"},
		{name: "link keeps label", in: "see [the docs](https://example.com/a?b=c)", want: "see the docs"},
		{name: "image keeps alt", in: "![diagram](img.png)", want: "diagram"},
		{name: "wiki link alias", in: "[[Some Note|alias text]]", want: "alias text"},
		{name: "wiki embed", in: "![[Other note]]", want: "Other note"},
		{name: "italic underscore", in: "an _important_ word", want: "an important word"},
		{name: "snake case survives", in: "call my_func_name now", want: "call my_func_name now"},
		{name: "strike and highlight", in: "~~old~~ ==new==", want: "old new"},
		{name: "inline code", in: "run `go test`", want: "run go test"},
		{name: "quote and list", in: "> quoted\n- item one\n1. item two", want: "quoted\nitem one\nitem two"},
		{name: "task list", in: "- [x] done task", want: "done task"},
		{name: "html tags", in: "<b>bold</b> text", want: "bold text"},
		{name: "footnote", in: "claim[^1] here", want: "claim here"},
		{name: "only punctuation", in: "?!...", want: ""},
		{name: "non ascii becomes space", in: "naïve café", want: "na ve caf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanOutputCharsetAndIdempotence(t *testing.T) {
	allowed := regexp.MustCompile(`^[\w\s]*$`)
	inputs := []string{
		"",
		"plain text",
		"**bold** *it* __u__ _i_ ~~s~~ ==h== `c`",
		"# Title\n\n> quote with [link](http://x.y) and ![[embed|alias]]",
		"___triple___ and **_mixed_** and *__nested__*",
		"weird ** unbalanced _ markers ~~ here",
		"tabs\tand\vvertical\ftabs nbsp em",
		"中文 日本語 한국어",
		"```go\nfmt.Println(\"hi\")\n```",
		"x _a_b_ y",
		"\xff\xfe invalid utf8",
	}

	for _, in := range inputs {
		once := Clean(in)
		if !allowed.MatchString(once) {
			t.Errorf("Clean(%q) = %q contains characters outside [\\w\\s]", in, once)
		}
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestStripMarkupNested(t *testing.T) {
	if got := StripMarkup("**[*label*](http://a)**"); got != "label" {
		t.Errorf("StripMarkup nested = %q, want label", got)
	}
}
